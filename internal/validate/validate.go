// Package validate checks input records before submission using the same
// limits the server enforces, and reports failures in the server's
// field/messages shape.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/thriftease/thriftease/pkg/domain"
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[!@#$%^&*()_+=\-\[\]{};:'",.<>/?]`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "haslower", matches(lowercaseRegex))
		mustRegister(v, "hasupper", matches(uppercaseRegex))
		mustRegister(v, "hasdigit", matches(digitRegex))
		mustRegister(v, "hasspecial", matches(specialRegex))
		mustRegister(v, "decimal", func(fl validator.FieldLevel) bool {
			_, err := decimal.NewFromString(fl.Field().String())
			return err == nil
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates v and returns the failures grouped by JSON field name, in
// field declaration order. A nil list means v is valid.
func Struct(v any) domain.ErrorList {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrorList{{Field: "__all__", Messages: []string{err.Error()}}}
	}

	var out domain.ErrorList
	index := make(map[string]int)
	for _, fe := range verrs {
		field := fe.Field()
		i, ok := index[field]
		if !ok {
			i = len(out)
			index[field] = i
			out = append(out, domain.FieldError{Field: field})
		}
		out[i].Messages = append(out[i].Messages, message(fe))
	}
	return out
}

// Var validates a single value against tag, for live form feedback.
func Var(field string, value any, tag string) domain.ErrorList {
	err := get().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrorList{{Field: field, Messages: []string{err.Error()}}}
	}
	fe := domain.FieldError{Field: field}
	for _, e := range verrs {
		fe.Messages = append(fe.Messages, message(e))
	}
	return domain.ErrorList{fe}
}

// Decimal reports whether s parses as a decimal amount.
func Decimal(s string) bool {
	return Var("amount", s, "required,decimal") == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "haslower":
		return "Must contain a lowercase letter."
	case "hasupper":
		return "Must contain an uppercase letter."
	case "hasdigit":
		return "Must contain a digit."
	case "hasspecial":
		return "Must contain a special character."
	case "decimal":
		return "Enter a number."
	case "eqfield":
		return "The passwords do not match."
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}
