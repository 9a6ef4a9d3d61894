package auth

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// NewAccount is what the identity provider needs to create a sign-in.
type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
}

// Accounts creates and removes identity-provider accounts.
type Accounts interface {
	Create(ctx context.Context, a NewAccount) (string, error)
	Delete(ctx context.Context, uid string) error
}

// FirebaseAccounts manages Firebase Authentication users.
type FirebaseAccounts struct {
	client *auth.Client
}

func NewFirebaseAccounts(client *auth.Client) *FirebaseAccounts {
	return &FirebaseAccounts{client: client}
}

func (f *FirebaseAccounts) Create(ctx context.Context, a NewAccount) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(a.Email).
		Password(a.Password).
		DisplayName(a.DisplayName)

	rec, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("create auth user: %w", err)
	}
	return rec.UID, nil
}

func (f *FirebaseAccounts) Delete(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

// MemoryAccounts keeps accounts in process for local development and tests.
type MemoryAccounts struct {
	mu      sync.Mutex
	byUID   map[string]NewAccount
	byEmail map[string]string
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{byUID: map[string]NewAccount{}, byEmail: map[string]string{}}
}

func (m *MemoryAccounts) Create(_ context.Context, a NewAccount) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[a.Email]; taken {
		return "", ErrEmailInUse
	}
	uid := uuid.NewString()
	m.byUID[uid] = a
	m.byEmail[a.Email] = uid
	return uid, nil
}

func (m *MemoryAccounts) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.byUID[uid]; ok {
		delete(m.byEmail, a.Email)
		delete(m.byUID, uid)
	}
	return nil
}

// Exists reports whether uid is a live account.
func (m *MemoryAccounts) Exists(uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byUID[uid]
	return ok
}

// Len returns the number of live accounts.
func (m *MemoryAccounts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUID)
}
