package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/records"
	"github.com/haulzy/haulzy-backend/internal/store"
	"github.com/haulzy/haulzy-backend/internal/users/domain"
	"github.com/haulzy/haulzy-backend/internal/users/repository"
)

type UserService struct {
	repo     *repository.UserRepository
	accounts auth.Accounts
	recorder activity.Recorder
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewUserService(
	repo *repository.UserRepository,
	accounts auth.Accounts,
	recorder activity.Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		repo:     repo,
		accounts: accounts,
		recorder: recorder,
		events:   publisher,
		log:      log,
		now:      time.Now,
	}
}

// List returns users newest first. Users without a readable createdAt sort last.
func (s *UserService) List(ctx context.Context, f domain.Filter) ([]domain.User, error) {
	role := strings.ToLower(strings.TrimSpace(f.Role))
	switch role {
	case "", domain.RoleAll, domain.RoleAdmin, domain.RoleUser:
	default:
		return nil, domain.ErrInvalidRole
	}

	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		u := toUser(doc)
		if !matchesRole(u, role) || !records.MatchTerm(f.Search, u.Email, u.DisplayName, u.UID) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return out[i].UID < out[j].UID
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out, nil
}

func (s *UserService) Get(ctx context.Context, uid string) (domain.User, error) {
	doc, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return domain.User{}, err
	}
	return toUser(doc), nil
}

// IsAdmin reports whether uid has a profile granting admin access.
func (s *UserService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	u, err := s.Get(ctx, uid)
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

// ToggleRole flips uid between admin and user.
func (s *UserService) ToggleRole(ctx context.Context, actor, uid string) (domain.User, error) {
	if actor != "" && actor == uid {
		return domain.User{}, domain.ErrSelfAction
	}
	u, err := s.Get(ctx, uid)
	if err != nil {
		return domain.User{}, err
	}
	return s.setAdmin(ctx, actor, u.UID, !u.IsAdmin, activity.ActionToggleRole)
}

// SetAdmin grants or revokes admin access without a self check. It backs
// the command-line helpers.
func (s *UserService) SetAdmin(ctx context.Context, actor, uid string, admin bool) (domain.User, error) {
	return s.setAdmin(ctx, actor, uid, admin, activity.ActionSetAdmin)
}

func (s *UserService) setAdmin(ctx context.Context, actor, uid string, admin bool, action string) (domain.User, error) {
	role := domain.RoleUser
	if admin {
		role = domain.RoleAdmin
	}
	if err := s.repo.Update(ctx, uid, map[string]any{
		"role":      role,
		"isAdmin":   admin,
		"updatedAt": store.ServerTimestamp,
	}); err != nil {
		return domain.User{}, err
	}

	s.record(ctx, activity.Entry{
		ActorUID: actor,
		Action:   action,
		Target:   uid,
		Details:  map[string]any{"role": role},
	})
	s.events.Publish(ctx, events.Event{
		Type:       events.UserRoleChanged,
		Collection: store.Users,
		ID:         uid,
		Status:     role,
		Actor:      actor,
		At:         s.now(),
	})
	return s.Get(ctx, uid)
}

// Delete removes the users document and, with purgeAuth, the sign-in
// account as well.
func (s *UserService) Delete(ctx context.Context, actor, uid string, purgeAuth bool) error {
	if actor != "" && actor == uid {
		return domain.ErrSelfAction
	}
	if _, err := s.repo.GetByUID(ctx, uid); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	if purgeAuth {
		if err := s.accounts.Delete(ctx, uid); err != nil {
			return fmt.Errorf("profile deleted but sign-in account remains: %w", err)
		}
	}

	s.record(ctx, activity.Entry{
		ActorUID: actor,
		Action:   activity.ActionDeleteUser,
		Target:   uid,
		Details:  map[string]any{"purge_auth": purgeAuth},
	})
	s.events.Publish(ctx, events.Event{
		Type:       events.UserDeleted,
		Collection: store.Users,
		ID:         uid,
		Actor:      actor,
		At:         s.now(),
	})
	return nil
}

func (s *UserService) record(ctx context.Context, e activity.Entry) {
	if err := s.recorder.Record(ctx, e); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", e.Action), zap.Error(err))
	}
}

func matchesRole(u domain.User, role string) bool {
	switch role {
	case domain.RoleAdmin:
		return u.IsAdmin
	case domain.RoleUser:
		return !u.IsAdmin
	}
	return true
}

func toUser(doc store.Document) domain.User {
	d := doc.Data
	uid := records.String(d, "uid")
	if uid == "" {
		uid = doc.ID
	}

	isAdmin := auth.IsAdminProfile(d)
	role := records.String(d, "role")
	if role == "" {
		role = domain.RoleUser
		if isAdmin {
			role = domain.RoleAdmin
		}
	}

	created := records.FirstDate(d, "createdAt")
	plan, _ := d["plan"].(map[string]any)

	return domain.User{
		UID:          uid,
		Email:        records.String(d, "email"),
		DisplayName:  records.DisplayName(d),
		FirstName:    records.String(d, "firstName"),
		LastName:     records.String(d, "lastName"),
		Phone:        records.String(d, "phoneNumber", "phone"),
		Type:         records.String(d, "type"),
		Role:         role,
		IsAdmin:      isAdmin,
		Approved:     records.Bool(d, "approved"),
		Address:      records.OrPlaceholder(records.UserAddress(d)),
		TextUpdates:  records.Bool(d, "receiveTextUpdates"),
		Plan:         plan,
		CreatedAt:    created,
		CreatedLabel: records.FormatDate(created),
		UpdatedAt:    records.FirstDate(d, "updatedAt"),
		Raw:          d,
	}
}
