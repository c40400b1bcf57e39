// Package validation registers the request validation tags used by the
// API on gin's validator engine and renders validation failures as
// readable field messages.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Platforms accepted by share tracking
var Platforms = []string{"whatsapp", "facebook", "twitter", "instagram", "telegram", "email", "sms", "copy_link", "other"}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]*[0-9]$`)

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return fmt.Errorf("register phone: %w", err)
	}
	if err := v.RegisterValidation("platform", validatePlatform); err != nil {
		return fmt.Errorf("register platform: %w", err)
	}
	return nil
}

// RegisterGin installs the custom tags on gin's default binding validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

// phone: optional leading +, digits with spaces or dashes, at least 9 digits
func validatePhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 9
}

func validatePlatform(fl validator.FieldLevel) bool {
	s := strings.ToLower(fl.Field().String())
	for _, p := range Platforms {
		if s == p {
			return true
		}
	}
	return false
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"uuid":     "%s must be a valid UUID",
	"datetime": "%s must be a date in %p format",
	"oneof":    "%s must be one of [%p]",
	"min":      "%s must be at least %p",
	"max":      "%s must be at most %p",
	"gte":      "%s must be greater than or equal to %p",
	"lte":      "%s must be less than or equal to %p",
	"len":      "%s must be exactly %p characters",
	"phone":    "%s must be a valid phone number",
	"platform": "%s must be a supported share platform",
}

// Describe renders a binding error as "field message" pairs joined by "; ".
// Errors that are not validation failures (malformed JSON) are returned as-is.
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, translate(fe))
	}
	return strings.Join(msgs, "; ")
}

func translate(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	tmpl, ok := messageTemplates[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	msg := strings.Replace(tmpl, "%p", fe.Param(), 1)
	return fmt.Sprintf(msg, field)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
