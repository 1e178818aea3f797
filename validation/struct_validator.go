package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kbukum/cognitokit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once

	regionPattern   = regexp.MustCompile(`^[a-z]{2}(-gov)?-[a-z]+-\d$`)
	jwtPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*$`)
	poolIDSuffixPat = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report config keys rather than Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"mapstructure", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return toSnakeCase(fld.Name)
		})

		_ = validate.RegisterValidation("awsregion", func(fl validator.FieldLevel) bool {
			return IsRegion(fl.Field().String())
		})
		_ = validate.RegisterValidation("userpoolid", func(fl validator.FieldLevel) bool {
			return IsUserPoolID(fl.Field().String())
		})
		_ = validate.RegisterValidation("identitypoolid", func(fl validator.FieldLevel) bool {
			return IsIdentityPoolID(fl.Field().String())
		})
		_ = validate.RegisterValidation("jwt", func(fl validator.FieldLevel) bool {
			return jwtPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// IsRegion reports whether s looks like an AWS region name.
func IsRegion(s string) bool {
	return regionPattern.MatchString(s)
}

// IsUserPoolID reports whether s has the "<region>_<suffix>" shape.
func IsUserPoolID(s string) bool {
	region, suffix, ok := strings.Cut(s, "_")
	return ok && IsRegion(region) && poolIDSuffixPat.MatchString(suffix)
}

// IsIdentityPoolID reports whether s has the "<region>:<uuid>" shape.
func IsIdentityPoolID(s string) bool {
	region, id, ok := strings.Cut(s, ":")
	if !ok || !IsRegion(region) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Validate validates a struct using its `validate` tags.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := fieldPath(e.Namespace())
		message := formatValidationError(e)
		fieldErrors = append(fieldErrors, FieldError{Field: field, Message: message})
		messages = append(messages, field+": "+message)
	}

	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fieldErrors)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + e.Param() + " is set"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "awsregion":
		return "must be an AWS region such as us-east-1"
	case "userpoolid":
		return "must look like <region>_<id>"
	case "identitypoolid":
		return "must look like <region>:<uuid>"
	case "jwt":
		return "must be a JWT"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
