package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

var registerOnce sync.Once

// Register installs the custom rules on gin's validator engine. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		err = v.RegisterValidation("notblank", notBlank)
	})
	return err
}

// notBlank rejects strings made only of whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// jsonFieldName makes field errors use the wire name (json, then form tag).
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FromBindingError converts a ShouldBind failure into a ValidationError whose
// details enumerate every failing field.
func FromBindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
		msg := "Validation failed"
		if len(missing) > 0 {
			msg = "Missing required fields: " + strings.Join(missing, ", ")
		}
		return apperrors.NewValidationError(msg, fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apperrors.NewValidationError("Invalid request body", map[string]string{
			typeErr.Field: fmt.Sprintf("must be of type %s", typeErr.Type),
		})
	case errors.As(err, &syntaxErr):
		return apperrors.NewValidationError("Malformed JSON body", nil)
	}
	return apperrors.NewValidationError("Invalid request: "+err.Error(), nil)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}
