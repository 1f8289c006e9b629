package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/craftandcart/storefront/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their json names, the same names the form uses
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateDraft returns one message per failing field, keyed by the
// field's form name. An empty map means the draft passes.
func validateDraft(draft models.CheckoutDraft) map[string]string {
	fieldErrors := map[string]string{}

	err := validate.Struct(draft)
	if err == nil {
		return fieldErrors
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		fieldErrors["form"] = "Invalid form data"
		return fieldErrors
	}
	for _, fe := range invalid {
		switch fe.Tag() {
		case "required":
			fieldErrors[fe.Field()] = "This field is required"
		case "email":
			fieldErrors[fe.Field()] = "Enter a valid email address"
		default:
			fieldErrors[fe.Field()] = "Invalid value"
		}
	}
	return fieldErrors
}
