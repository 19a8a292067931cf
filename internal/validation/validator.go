package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"socialnet/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Errors use JSON field names and the
// custom tags "username", "strongpwd" and "account_email".
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
			return ValidateEmail(NormalizeEmail(fl.Field().String())) == nil
		})
		validate = v
	})
	return validate
}

// Struct validates s and returns a models.AppError with per-field details.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	appErr := models.NewValidationError("invalid request")
	for field, msg := range ToDetails(err) {
		appErr.WithField(field, msg)
	}
	return appErr
}

// ToDetails converts decoding and validation errors into field messages.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email", "account_email":
		if err := ValidateEmail(NormalizeEmail(stringValue(fe))); err != nil {
			return err.Error()
		}
		return "invalid email format"
	case "username":
		if err := ValidateUsername(stringValue(fe)); err != nil {
			return err.Error()
		}
	case "strongpwd":
		if err := ValidatePassword(stringValue(fe)); err != nil {
			return err.Error()
		}
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	}
	return "failed on the '" + fe.Tag() + "' rule"
}

func stringValue(fe validator.FieldError) string {
	v := reflect.ValueOf(fe.Value())
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return ""
	}
	return v.String()
}
