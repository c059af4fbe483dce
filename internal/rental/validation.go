package rental

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"bitbucket.org/crgw/rental-gateway/internal/tools/jsoncodec"
	"github.com/go-playground/validator/v10"
)

var (
	requestValidator = newRequestValidator()
	emailValidator   = validator.New()
)

func newRequestValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "jsonstring", isNonEmptyString)
	mustRegister(v, "jsonemail", isEmail)
	mustRegister(v, "jsonscalar", isStringOrInteger)

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// Validate checks the fields downstream consumers rely on: name and email are
// required strings, email is well formed, and model, year and rentalDuration
// are strings or integers when present.
func Validate(request RentalRequest) error {
	err := requestValidator.Struct(request)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		problems = append(problems, describe(fieldErr))
	}

	return fmt.Errorf("invalid rental request: %s", strings.Join(problems, "; "))
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "jsonstring":
		return fieldErr.Field() + " must be a non-empty string"
	case "jsonemail":
		return fieldErr.Field() + " must be a valid email address"
	case "jsonscalar":
		return fieldErr.Field() + " must be a string or an integer"
	default:
		return fieldErr.Field() + " is invalid"
	}
}

func rawValue(fl validator.FieldLevel) json.RawMessage {
	return json.RawMessage(fl.Field().Bytes())
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := jsoncodec.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNonEmptyString(fl validator.FieldLevel) bool {
	s, ok := decodeString(rawValue(fl))
	return ok && strings.TrimSpace(s) != ""
}

func isEmail(fl validator.FieldLevel) bool {
	s, ok := decodeString(rawValue(fl))
	if !ok {
		return false
	}
	return emailValidator.Var(s, "required,email") == nil
}

func isStringOrInteger(fl validator.FieldLevel) bool {
	raw := bytes.TrimSpace(rawValue(fl))
	if _, ok := decodeString(raw); ok {
		return true
	}

	var n json.Number
	if err := jsoncodec.Unmarshal(raw, &n); err != nil {
		return false
	}
	_, err := n.Int64()
	return err == nil
}
