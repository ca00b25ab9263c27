package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return v
}

// Struct validates a request DTO by its `validate` tags and returns the first
// failure as a readable error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return fmt.Errorf("%s must be a valid id", fe.Field())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}
