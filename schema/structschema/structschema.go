// Package structschema is the default Schema[T] implementation: it
// decodes loosely-typed input (map[string][]string query values,
// map[string]string path params, or a map[string]any decoded JSON body)
// into a struct via mapstructure, then
// validates it with go-playground/validator, translating field errors
// into schema.FieldError the way the teacher's
// internal/infrastructure/validator/playground-validator.go does.
package structschema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/igniter-hq/igniter-go/schema"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

type fieldErrors struct {
	fields []schema.FieldError
}

func (e *fieldErrors) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.fields[0].Field, e.fields[0].Message)
}

func (e *fieldErrors) Fields() []schema.FieldError { return e.fields }

// AsFieldErrors recovers the per-field detail from an error returned by
// Schema.Parse, if it originated from structural validation.
func AsFieldErrors(err error) ([]schema.FieldError, bool) {
	fe, ok := err.(schema.FieldErrors)
	if !ok {
		return nil, false
	}
	return fe.Fields(), true
}

// Of builds a Schema[T] validating decoded input against T's struct tags.
func Of[T any]() schema.Schema[T] {
	return &structSchema[T]{driver: defaultValidator()}
}

type structSchema[T any] struct {
	driver *validator.Validate
}

func (s *structSchema[T]) Parse(input any) (T, error) {
	var out T

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return out, err
	}
	if input != nil {
		if err := decoder.Decode(input); err != nil {
			return out, &fieldErrors{fields: []schema.FieldError{{
				Field:   "",
				Code:    "decode_error",
				Message: err.Error(),
			}}}
		}
	}

	if err := s.driver.Struct(out); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return out, err
		}
		return out, &fieldErrors{fields: translate(ve)}
	}

	return out, nil
}

func defaultValidator() *validator.Validate {
	driver := validator.New()
	driver.RegisterTagNameFunc(func(fld reflect.StructField) string {
		jsonName := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" || jsonName == "" {
			jsonName = fld.Name
		}

		label := fld.Tag.Get("label")
		if label == "" {
			label = jsonName
		}
		return fmt.Sprintf("%s|%s", jsonName, label)
	})
	return driver
}

func translate(ve validator.ValidationErrors) []schema.FieldError {
	out := make([]schema.FieldError, 0, len(ve))
	for _, fe := range ve {
		code := fe.Tag()
		if code == "uuid_rfc4122" {
			code = "uuid"
		}
		out = append(out, schema.FieldError{
			Field:   jsonLabel(fe),
			Code:    code,
			Message: translateTag(fe),
			Param:   fe.Param(),
		})
	}
	return out
}

func translateTag(fe validator.FieldError) string {
	label := displayLabel(fe)
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be >= %s", label, param)
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must not be greater than %s characters", label, param)
		}
		return fmt.Sprintf("%s must be <= %s", label, param)
	case "email":
		return fmt.Sprintf("%s is an invalid email address", label)
	case "uuid", "uuid_rfc4122":
		return fmt.Sprintf("%s must be a valid UUID", label)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be >= %s", label, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", label, param)
	case "lte":
		return fmt.Sprintf("%s must be <= %s", label, param)
	case "eq":
		return fmt.Sprintf("%s must be equal to %s", label, param)
	case "ne":
		return fmt.Sprintf("%s must not be equal to %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", label, param)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func displayLabel(fe validator.FieldError) string {
	parts := strings.Split(fe.Field(), "|")
	if len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

func jsonLabel(fe validator.FieldError) string {
	parts := strings.Split(fe.Field(), "|")
	return parts[0]
}
