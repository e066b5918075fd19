package publication

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidationError reports an invalid record in a publication list.
type ValidationError struct {
	Index int    // Position in the list
	ID    string // Citation key, if any
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("publication %d (%s): %s", e.Index, e.ID, e.Msg)
	}
	return fmt.Sprintf("publication %d: %s", e.Index, e.Msg)
}

// Validate checks a single publication against its struct tags.
func Validate(p Publication) error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateAll validates every publication and returns all failures joined.
func ValidateAll(pubs []Publication) error {
	var errs []error
	for i, p := range pubs {
		if err := Validate(p); err != nil {
			errs = append(errs, &ValidationError{Index: i, ID: p.ID, Msg: err.Error()})
		}
	}
	return errors.Join(errs...)
}

// formatValidationError turns validator output into a single readable message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Publication.")
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s out of range: %v", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
