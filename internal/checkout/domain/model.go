package domain

import (
	"strings"
	"time"
	"unicode"
)

// Pending kinds.
const (
	KindSignup   = "signup"
	KindPurchase = "purchase"
)

// SignupForm is the multi-step signup form. Field names follow the browser form.
type SignupForm struct {
	FirstName          string `json:"firstName" validate:"required,max=100"`
	LastName           string `json:"lastName" validate:"required,max=100"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6"`
	ConfirmPassword    string `json:"confirmPassword" validate:"required,eqfield=Password"`
	PhoneNumber        string `json:"phoneNumber" validate:"required,phone"`
	StreetAddress      string `json:"streetAddress" validate:"required"`
	City               string `json:"city" validate:"required"`
	State              string `json:"state" validate:"required"`
	Zip                string `json:"zip" validate:"required,zip"`
	ReceiveTextUpdates bool   `json:"receiveTextUpdates"`
	Plan               string `json:"plan" validate:"required,oneof=onetime basic premium"`
	Interval           string `json:"interval" validate:"omitempty,oneof=once month year"`
}

// Normalize trims text fields and lowercases the email, plan and interval.
func (f *SignupForm) Normalize() {
	for _, s := range []*string{&f.FirstName, &f.LastName, &f.PhoneNumber, &f.StreetAddress, &f.City, &f.State, &f.Zip} {
		*s = strings.TrimSpace(*s)
	}
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Plan = strings.ToLower(strings.TrimSpace(f.Plan))
	f.Interval = strings.ToLower(strings.TrimSpace(f.Interval))
}

func (f SignupForm) DisplayName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// Digits strips everything but digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Session is a hosted checkout session to redirect the browser to.
type Session struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Pending is the hand-off kept between starting checkout and returning from it.
type Pending struct {
	Kind      string      `json:"kind"`
	UID       string      `json:"uid,omitempty"`
	Form      *SignupForm `json:"form,omitempty"`
	PlanID    string      `json:"plan_id"`
	Interval  string      `json:"interval"`
	CreatedAt time.Time   `json:"created_at"`
}

// Verification is the answer of verify_checkout_session.
type Verification struct {
	Status        string `json:"status"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	PaymentIntent string `json:"payment_intent"`
}

func (v Verification) Complete() bool {
	return strings.EqualFold(v.Status, "complete")
}

// SignupResult describes the account created after a verified checkout.
type SignupResult struct {
	UID   string         `json:"uid"`
	Email string         `json:"email"`
	Plan  map[string]any `json:"plan"`
}
