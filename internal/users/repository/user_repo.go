package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/haulzy/haulzy-backend/internal/store"
	"github.com/haulzy/haulzy-backend/internal/users/domain"
)

// UserRepository reads and writes users/{uid} documents.
type UserRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.store.List(ctx, store.Users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return docs, nil
}

// GetByUID returns domain.ErrUserNotFound when no profile exists.
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (store.Document, error) {
	p, err := userPath(uid)
	if err != nil {
		return store.Document{}, err
	}
	doc, err := r.store.Get(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		return store.Document{}, domain.ErrUserNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get user %s: %w", uid, err)
	}
	return doc, nil
}

// Create writes a full profile, replacing any existing document.
func (r *UserRepository) Create(ctx context.Context, uid string, data map[string]any) error {
	p, err := userPath(uid)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, p, data); err != nil {
		return fmt.Errorf("create user %s: %w", uid, err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, uid string, fields map[string]any) error {
	p, err := userPath(uid)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, p, fields)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("update user %s: %w", uid, err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	p, err := userPath(uid)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, p); err != nil {
		return fmt.Errorf("delete user %s: %w", uid, err)
	}
	return nil
}

func userPath(uid string) (string, error) {
	if err := store.ValidateID(uid); err != nil {
		return "", err
	}
	return store.Doc(store.Users, uid), nil
}
