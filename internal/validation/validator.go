// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// enumTags are the custom tags. Each accepts its listed values, compared
// case-insensitively.
var enumTags = map[string][]string{
	"contenttype": {"movies", "shows"},
	"knnmetric":   {"cosine", "euclidean", "manhattan"},
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator. Errors name fields by their
// JSON key so messages match what the client sent.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		for tag, allowed := range enumTags {
			//nolint:errcheck // fails only for an empty tag or nil func
			_ = v.RegisterValidation(tag, oneOfFold(allowed))
		}
		validate = v
	})
	return validate
}

func oneOfFold(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return true
			}
		}
		return false
	}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   any
	Message string
}

// RequestValidationError lists every rule a request broke, in field order.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// FirstField is the JSON name of the first failing field, or "".
func (e *RequestValidationError) FirstField() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Field
}

// APIError is the body of a VALIDATION_ERROR response.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError renders e for the error envelope. A single failure puts its
// field and tag in Details; several go in Details["fields"].
func (e *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: "VALIDATION_ERROR", Message: e.Error()}
	switch len(e.Fields) {
	case 0:
		out.Message = "Validation failed"
	case 1:
		out.Details = map[string]any{"field": e.Fields[0].Field, "tag": e.Fields[0].Tag}
	default:
		fields := make([]map[string]any, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = map[string]any{"field": f.Field, "tag": f.Tag, "message": f.Message}
		}
		out.Details = map[string]any{"fields": fields}
	}
	return out
}

// ValidateStruct checks s against its validate tags. It returns nil when
// every rule holds.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}
	out := &RequestValidationError{Fields: make([]FieldError, len(fes))}
	for i, fe := range fes {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	if allowed, ok := enumTags[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, " "))
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must contain %s %s characters", field, bound, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain %s %s items", field, bound, param)
		default:
			return fmt.Sprintf("%s must be %s %s", field, bound, param)
		}
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
