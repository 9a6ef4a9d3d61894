package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			n := len(Digits(fl.Field().String()))
			return n >= 10 && n <= 15
		})
		_ = v.RegisterValidation("zip", func(fl validator.FieldLevel) bool {
			return zipPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least 6 characters",
	"max":      "is too long",
	"eqfield":  "passwords do not match",
	"phone":    "must be a valid phone number",
	"zip":      "must be a 5-digit ZIP code",
	"oneof":    "is not a valid choice",
}

// Validate checks the form and returns a *ValidationError listing every
// failing field.
func (f SignupForm) Validate() error {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}
