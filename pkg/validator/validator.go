package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	roles              = []string{"patient", "doctor"}
	appointmentStatus  = []string{"upcoming", "completed", "cancelled"}
	appointmentTypes   = []string{"video", "phone", "in-person"}
	documentTypes      = []string{"prescription", "lab_result", "medical_record"}
	registerOnce       sync.Once
	errUnknownEngine   = errors.New("binding engine is not a go-playground validator")
	registrationResult error
)

// Register installs the custom tags and JSON field naming on gin's binding
// validator. Safe to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registrationResult = errUnknownEngine
			return
		}
		registrationResult = Configure(v)
	})
	return registrationResult
}

// Configure registers the custom tags on v
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)

	rules := map[string]validator.Func{
		"role":               oneOf(roles),
		"appointment_status": oneOf(appointmentStatus),
		"appointment_type":   oneOf(appointmentTypes),
		"document_type":      oneOf(documentTypes),
		"calendar_date":      calendarDate,
		"notblank":           notBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}
	return nil
}

// Errors converts a binding error into a list of field errors. Decoder
// failures never leak their text: a wrong JSON type names only the field,
// anything else is reported against the body.
func Errors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return []FieldError{{Field: typeErr.Field, Message: "has the wrong type"}}
	case errors.As(err, &maxBytesErr):
		return []FieldError{{Field: "body", Message: "is too large"}}
	case errors.Is(err, io.EOF):
		return []FieldError{{Field: "body", Message: "is required"}}
	}
	return []FieldError{{Field: "body", Message: "must be valid JSON"}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be empty"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "role":
		return "must be one of " + strings.Join(roles, ", ")
	case "appointment_status":
		return "must be one of " + strings.Join(appointmentStatus, ", ")
	case "appointment_type":
		return "must be one of " + strings.Join(appointmentTypes, ", ")
	case "document_type":
		return "must be one of " + strings.Join(documentTypes, ", ")
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	}
	return "is invalid"
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

func calendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
