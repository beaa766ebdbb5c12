// Package validation checks submitted forms with go-playground/validator and
// turns failures into per-field messages for re-rendering.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
)

func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
		validate.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return strings.TrimLeft(s, "0123456789") != ""
		})
	})
	return validate
}

// FieldErrors maps a form field name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Struct validates v. It returns nil or FieldErrors keyed by the Go struct
// field name of each failing field.
func Struct(v any, messages map[string]string) FieldErrors {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"NonField": err.Error()}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		msg, ok := messages[name+"."+fe.Tag()]
		if !ok {
			msg = "Enter a valid value."
		}
		out[name] = msg
	}
	return out
}
