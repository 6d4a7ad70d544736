// Package validators decodes and validates JSON request bodies.
package validators

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vittoria-dev/menu-engine/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSONBody decodes the request body into dest and runs struct
// validation. Unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		var invalid *validator.InvalidValidationError
		if stderrors.As(err, &invalid) {
			return errors.Wrap(errors.CodeInternal, err, "request validation misconfigured")
		}
		return errors.New(errors.CodeValidation, "request validation failed").
			WithDetails(formatValidationErrors(err))
	}
	return nil
}

// DecodeJSONBodyAllowEmpty behaves like DecodeJSONBody but treats a
// missing or empty body as the zero value of dest.
func DecodeJSONBodyAllowEmpty(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(errors.CodeValidation, err, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return errors.New(errors.CodeValidation, "request validation failed").
			WithDetails(formatValidationErrors(err))
	}
	return nil
}

func formatValidationErrors(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fieldName(fe)))
		case "uuid":
			out = append(out, fmt.Sprintf("%s must be a valid uuid", fieldName(fe)))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s", fieldName(fe), fe.Param()))
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s", fieldName(fe), fe.Param()))
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of: %s", fieldName(fe), fe.Param()))
		case "len":
			out = append(out, fmt.Sprintf("%s must be exactly %s characters", fieldName(fe), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s validation", fieldName(fe), fe.Tag()))
		}
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "field"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
