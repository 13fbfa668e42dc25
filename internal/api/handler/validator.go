package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/projectx/accounts/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Schema failures come back as domain.FieldErrors, which the central error
// handler renders in the same envelope as service-level validation failures.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New()

	// Report fields by their wire name, not the Go struct field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("bd_phone", func(fl validator.FieldLevel) bool {
		return domain.ValidPhone(fl.Field().String())
	})

	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			errs := make(domain.FieldErrors, 0, len(ve))
			for _, fe := range ve {
				errs = append(errs, domain.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
			}
			return errs
		}
		return err
	}
	return nil
}

// fieldMessage converts a single validation failure into its client message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return domain.MsgFieldRequired
	case "email":
		return domain.MsgEmailInvalid
	case "bd_phone":
		return domain.MsgPhoneInvalid
	case "min":
		return domain.MsgFieldBlank
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
