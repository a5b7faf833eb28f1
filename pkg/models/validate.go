package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedInput marks input that could not be decoded into the expected
// shape at all (wrong JSON types, unknown keys).
var ErrMalformedInput = errors.New("malformed input")

// ValidationError reports every offending field of a record in one go.
// Missing holds required fields that are absent, Invalid holds fields that
// are present but out of range.
type ValidationError struct {
	Entity  string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields: [%s]", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid fields: [%s]", strings.Join(e.Invalid, ", ")))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// Fields returns the names of all offending fields, missing first.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	for _, inv := range e.Invalid {
		out = append(out, strings.SplitN(inv, " ", 2)[0])
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Entity: entity}
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if fe.Tag() == "required" {
			ve.Missing = append(ve.Missing, path)
			continue
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		ve.Invalid = append(ve.Invalid, fmt.Sprintf("%s (%s, got %v)", path, rule, fe.Value()))
	}
	return ve
}

// fieldPath turns a validator namespace such as
// "ScenarioInput.new_plan.RatePlan.name" into "new_plan.name": the root type
// and embedded struct names (which carry no json name) are dropped.
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		if r := []rune(p)[0]; unicode.IsUpper(r) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}
