// Package validation checks inbound forms before anything touches the
// store. Missing required fields never reach an adapter; they come back
// as a FieldError naming the field.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError reports the first form field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ReportForm is the crime-report intake form. All fields but witness info
// are required; the crime type must be one of the offered categories.
type ReportForm struct {
	CrimeType   string `json:"crimeType" validate:"required,oneof=theft assault vandalism fraud other"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description" validate:"required"`
	WitnessInfo string `json:"witnessInfo"`
	ContactInfo string `json:"contactInfo" validate:"required"`
}

// SignupForm is the account registration form.
type SignupForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

// LoginForm carries credentials for an existing account.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MessageForm is a single inbound chat message.
type MessageForm struct {
	Text string `json:"text" validate:"required"`
}

// Check validates a form struct and converts the first failure into a
// FieldError with the JSON field name.
func Check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := jsonName(form, fe.StructField())
	switch fe.Tag() {
	case "required":
		return &FieldError{Field: field, Reason: "is required"}
	case "email":
		return &FieldError{Field: field, Reason: "must be a valid email address"}
	case "oneof":
		return &FieldError{Field: field, Reason: fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))}
	default:
		return &FieldError{Field: field, Reason: "is invalid"}
	}
}

func jsonName(form any, structField string) string {
	// validator reports Go field names; surface the JSON name clients sent
	t := indirectType(form)
	if f, ok := t.FieldByName(structField); ok {
		if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
			if i := strings.IndexByte(tag, ','); i >= 0 {
				return tag[:i]
			}
			return tag
		}
	}
	return structField
}

func indirectType(form any) reflect.Type {
	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
