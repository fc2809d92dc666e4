// Package validation configures the request validator shared by the application.
package validation

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagAbsURL is the validation tag for absolute URLs: a scheme and an authority are required.
const TagAbsURL = "absurl"

var std = New()

// New returns a validator that reports fields by their json names and knows the absurl tag.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only fails on an empty tag or a builtin name.
	_ = validate.RegisterValidation(TagAbsURL, func(fl validator.FieldLevel) bool {
		return isAbsURL(fl.Field().String())
	})

	return validate
}

func isAbsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}

// IsURL reports whether s is a structurally valid absolute URL.
// No reachability or DNS check is performed.
func IsURL(s string) bool {
	return std.Var(s, "required,"+TagAbsURL) == nil
}

// Var validates a single value against tag using the shared validator.
func Var(v any, tag string) error {
	return std.Var(v, tag)
}
