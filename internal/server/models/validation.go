package models

import (
	"errors"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// EmailPattern is the accepted shape of an email address.
	EmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	// ContactPattern is a ten digit contact number.
	ContactPattern = regexp.MustCompile(`^\d{10}$`)
)

// ValidationError reports the first field constraint a record violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_number", func(fl validator.FieldLevel) bool {
		return ContactPattern.MatchString(fl.Field().String())
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok && !d.IsZero() {
			return d.String()
		}
		return nil
	}, Date{})
	return v
}

var requiredMessages = map[string]string{
	"Name":         "Name is required",
	"Email":        "Email is required",
	"PasswordHash": "Password is required",
	"Age":          "Age is required",
	"DOB":          "Date of birth is required",
	"Contact":      "Contact number is required",
}

var ruleMessages = map[string]string{
	"account_email":  "Invalid email format",
	"contact_number": "Invalid contact number",
	"min":            "Invalid age",
	"max":            "Invalid age",
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	msg, ok := ruleMessages[fe.Tag()]
	if fe.Tag() == "required" || !ok {
		msg = requiredMessages[fe.Field()]
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
