package validator

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-playground/validator"
)

var (
	global     *validator.Validate
	phoneRegex = regexp.MustCompile(`^7\d{10}$`)
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("positive", validatePositiveInt)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// validatePhone accepts numbers of the form 7 followed by ten digits.
func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validatePositiveInt(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case int:
		return v > 0
	case int64:
		return v > 0
	default:
		return false
	}
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

// Var validates a single value against a tag expression. Used for the
// optional fields of partial updates, which only get checked when present.
func Var(field any, tag string) error {
	return parseValidationErrors(Validator().Var(field, tag))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "email":
		msg = ErrInvalidFormat
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "len":
		msg = ErrInvalidFormat
	case "phone":
		msg = "Phone must be 7 followed by ten digits"
	case "positive":
		msg = "Value must be positive"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
