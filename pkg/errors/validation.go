package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MalformedRequestMessage is reported for bodies that cannot be decoded at all.
const MalformedRequestMessage = "Request body is malformed"

// FromValidator converts a validator or binding failure into a ValidationError
// whose message names only the offending fields.
func FromValidator(err error) *ValidationError {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return NewValidationError("", MalformedRequestMessage)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return NewValidationError("", strings.Join(messages, ", "))
}
