package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/checkout/domain"
	"github.com/haulzy/haulzy-backend/internal/checkout/repository"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/store"
)

// Profiles writes users documents.
type Profiles interface {
	Create(ctx context.Context, uid string, data map[string]any) error
	Update(ctx context.Context, uid string, fields map[string]any) error
}

type Options struct {
	SuccessURL string
	CancelURL  string
	PendingTTL time.Duration
}

type CheckoutService struct {
	catalog   domain.Catalog
	functions functions.Caller
	pending   repository.PendingStore
	accounts  auth.Accounts
	profiles  Profiles
	recorder  activity.Recorder
	events    events.Publisher
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	catalog domain.Catalog,
	caller functions.Caller,
	pending repository.PendingStore,
	accounts auth.Accounts,
	profiles Profiles,
	recorder activity.Recorder,
	publisher events.Publisher,
	opts Options,
	log *zap.Logger,
) *CheckoutService {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 2 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		catalog:   catalog,
		functions: caller,
		pending:   pending,
		accounts:  accounts,
		profiles:  profiles,
		recorder:  recorder,
		events:    publisher,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

func (s *CheckoutService) Plans() domain.Catalog {
	return s.catalog
}

// StartSignup validates the form, opens a hosted checkout session and keeps
// the form until the browser returns. No account is created here.
func (s *CheckoutService) StartSignup(ctx context.Context, form domain.SignupForm) (domain.Session, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return domain.Session{}, err
	}
	plan, interval, err := s.resolvePlan(form.Plan, form.Interval)
	if err != nil {
		return domain.Session{}, err
	}
	form.Interval = interval

	sess, err := s.openCheckout(ctx, plan, interval, map[string]any{
		"email":         form.Email,
		"customerName":  form.DisplayName(),
		"phoneNumber":   domain.Digits(form.PhoneNumber),
		"streetAddress": form.StreetAddress,
		"city":          form.City,
		"state":         form.State,
		"zip":           form.Zip,
	}, domain.KindSignup)
	if err != nil {
		return domain.Session{}, err
	}

	pending := domain.Pending{
		Kind:      domain.KindSignup,
		Form:      &form,
		PlanID:    plan.ID,
		Interval:  interval,
		CreatedAt: s.now(),
	}
	if err := s.pending.Save(ctx, sess.SessionID, pending, s.opts.PendingTTL); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// CompleteSignup creates the account once the checkout session is verified.
// A failed profile write removes the account again.
func (s *CheckoutService) CompleteSignup(ctx context.Context, sessionID string) (domain.SignupResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.SignupResult{}, domain.ErrMissingSession
	}

	verification, err := s.verify(ctx, sessionID)
	if err != nil {
		return domain.SignupResult{}, err
	}

	pending, err := s.pending.Load(ctx, sessionID)
	if err != nil {
		return domain.SignupResult{}, err
	}
	if pending.Kind != domain.KindSignup || pending.Form == nil {
		return domain.SignupResult{}, domain.ErrPendingSignupNotFound
	}
	form := *pending.Form

	plan, err := s.planData(pending, verification)
	if err != nil {
		return domain.SignupResult{}, err
	}

	uid, err := s.accounts.Create(ctx, auth.NewAccount{
		Email:       form.Email,
		Password:    form.Password,
		DisplayName: form.DisplayName(),
	})
	if err != nil {
		return domain.SignupResult{}, err
	}

	profile := map[string]any{
		"uid":                uid,
		"email":              form.Email,
		"firstName":          form.FirstName,
		"lastName":           form.LastName,
		"displayName":        form.DisplayName(),
		"phoneNumber":        domain.Digits(form.PhoneNumber),
		"type":               "customer",
		"isAdmin":            false,
		"role":               "user",
		"approved":           true,
		"streetAddress":      form.StreetAddress,
		"city":               form.City,
		"state":              form.State,
		"zip":                form.Zip,
		"receiveTextUpdates": form.ReceiveTextUpdates,
		"plan":               plan,
		"createdAt":          store.ServerTimestamp,
		"updatedAt":          store.ServerTimestamp,
	}
	if err := s.profiles.Create(ctx, uid, profile); err != nil {
		if derr := s.accounts.Delete(ctx, uid); derr != nil {
			s.log.Error("failed to roll back account", zap.String("uid", uid), zap.Error(derr))
		}
		return domain.SignupResult{}, fmt.Errorf("save profile: %w", err)
	}

	s.dropPending(ctx, sessionID)
	s.record(ctx, activity.Entry{
		ActorUID: uid,
		Action:   activity.ActionSignup,
		Target:   uid,
		Details:  map[string]any{"plan": pending.PlanID, "interval": pending.Interval},
	})
	s.events.Publish(ctx, events.Event{Type: events.UserCreated, Collection: store.Users, ID: uid, Actor: uid, At: s.now()})

	return domain.SignupResult{UID: uid, Email: form.Email, Plan: plan}, nil
}

// StartPurchase opens checkout for a signed-in user changing plan.
func (s *CheckoutService) StartPurchase(ctx context.Context, user *auth.Session, planID, interval string) (domain.Session, error) {
	plan, interval, err := s.resolvePlan(planID, interval)
	if err != nil {
		return domain.Session{}, err
	}

	sess, err := s.openCheckout(ctx, plan, interval, map[string]any{
		"uid":   user.UID,
		"email": user.Email,
	}, domain.KindPurchase)
	if err != nil {
		return domain.Session{}, err
	}

	pending := domain.Pending{
		Kind:      domain.KindPurchase,
		UID:       user.UID,
		PlanID:    plan.ID,
		Interval:  interval,
		CreatedAt: s.now(),
	}
	if err := s.pending.Save(ctx, sess.SessionID, pending, s.opts.PendingTTL); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// CompletePurchase records the new plan on the caller's profile.
func (s *CheckoutService) CompletePurchase(ctx context.Context, user *auth.Session, sessionID string) (map[string]any, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}

	verification, err := s.verify(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pending, err := s.pending.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if pending.Kind != domain.KindPurchase {
		return nil, domain.ErrPendingSignupNotFound
	}
	if pending.UID != user.UID {
		return nil, domain.ErrSessionMismatch
	}

	plan, err := s.planData(pending, verification)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, user.UID, map[string]any{
		"plan":      plan,
		"updatedAt": store.ServerTimestamp,
	}); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.dropPending(ctx, sessionID)
	s.record(ctx, activity.Entry{
		ActorUID: user.UID,
		Action:   activity.ActionPurchase,
		Target:   user.UID,
		Details:  map[string]any{"plan": pending.PlanID, "interval": pending.Interval},
	})
	s.events.Publish(ctx, events.Event{
		Type:       events.PlanPurchased,
		Collection: store.Users,
		ID:         user.UID,
		Status:     pending.PlanID,
		Actor:      user.UID,
		At:         s.now(),
	})
	return plan, nil
}

func (s *CheckoutService) resolvePlan(planID, interval string) (domain.Plan, string, error) {
	plan, ok := s.catalog.Find(planID)
	if !ok {
		return domain.Plan{}, "", domain.ErrUnknownPlan
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if !plan.Recurring {
		return plan, domain.IntervalOnce, nil
	}
	if interval == "" {
		interval = domain.IntervalMonth
	}
	if _, ok := plan.Price(interval); !ok {
		return domain.Plan{}, "", domain.ErrInvalidInterval
	}
	return plan, interval, nil
}

type checkoutResponse struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
	URL       string `json:"url"`
}

func (s *CheckoutService) openCheckout(ctx context.Context, plan domain.Plan, interval string, customer map[string]any, kind string) (domain.Session, error) {
	price, _ := plan.Price(interval)
	payload := map[string]any{
		"plan":       plan.ID,
		"priceCents": price,
		"successUrl": successURL(s.opts.SuccessURL, kind),
		"cancelUrl":  s.opts.CancelURL,
	}
	for k, v := range customer {
		payload[k] = v
	}

	name := functions.PurchaseSingleHaul
	if plan.Recurring {
		name = functions.PurchaseSubscription
		payload["interval"] = interval
	}

	var resp checkoutResponse
	if err := s.functions.Call(ctx, name, payload, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("start checkout: %w", err)
	}
	id := resp.SessionID
	if id == "" {
		id = resp.ID
	}
	if id == "" || resp.URL == "" {
		return domain.Session{}, fmt.Errorf("start checkout: %s returned no session", name)
	}
	return domain.Session{SessionID: id, URL: resp.URL}, nil
}

func (s *CheckoutService) verify(ctx context.Context, sessionID string) (domain.Verification, error) {
	var v domain.Verification
	if err := s.functions.Call(ctx, functions.VerifyCheckoutSession, map[string]any{"sessionId": sessionID}, &v); err != nil {
		return domain.Verification{}, fmt.Errorf("verify checkout session: %w", err)
	}
	if !v.Complete() {
		return domain.Verification{}, domain.ErrPaymentNotCompleted
	}
	return v, nil
}

func (s *CheckoutService) planData(p domain.Pending, v domain.Verification) (map[string]any, error) {
	plan, ok := s.catalog.Find(p.PlanID)
	if !ok {
		return nil, domain.ErrUnknownPlan
	}
	price, _ := plan.Price(p.Interval)
	return map[string]any{
		"id":                    plan.ID,
		"name":                  plan.Name,
		"interval":              p.Interval,
		"priceCents":            price,
		"pickups":               plan.Pickups,
		"startDate":             s.now().UTC().Format(time.RFC3339),
		"status":                "active",
		"stripeCustomerId":      v.Customer,
		"stripeSubscriptionId":  nullable(v.Subscription),
		"stripePaymentIntentId": nullable(v.PaymentIntent),
	}, nil
}

func (s *CheckoutService) dropPending(ctx context.Context, sessionID string) {
	if err := s.pending.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to delete pending checkout", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *CheckoutService) record(ctx context.Context, e activity.Entry) {
	if err := s.recorder.Record(ctx, e); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", e.Action), zap.Error(err))
	}
}

// successURL appends the checkout placeholder the payment provider fills in.
func successURL(base, kind string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return base
	}
	q := u.Query()
	q.Set("flow", kind)
	u.RawQuery = q.Encode()
	return u.String() + "&session_id={CHECKOUT_SESSION_ID}"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
