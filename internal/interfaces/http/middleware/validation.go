package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator: JSON field names in errors,
// image_url for remote image references and dimension_preset for card sizes
func SetupValidator() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return registerValidations(v)
	}
	return nil
}

type customValidation struct {
	tag string
	fn  validator.Func
}

var customValidations = []customValidation{
	{tag: "image_url", fn: validateImageURL},
	{tag: "dimension_preset", fn: validateDimensionPreset},
}

func registerValidations(v *validator.Validate) error {
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
	return registerTags(v, customValidations)
}

func registerTags(v *validator.Validate, validations []customValidation) error {
	for _, cv := range validations {
		if err := v.RegisterValidation(cv.tag, cv.fn); err != nil {
			return fmt.Errorf("failed to register validation %q: %w", cv.tag, err)
		}
	}
	return nil
}

// validateDimensionPreset accepts catalog preset names, case-insensitively
func validateDimensionPreset(fl validator.FieldLevel) bool {
	return designer.DimensionPreset(strings.ToUpper(fl.Field().String())).IsValid()
}

// validateImageURL accepts absolute http and https URLs with a host
func validateImageURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Code:    e.Tag(),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "image_url":
		return "Must be an absolute http or https URL"
	case "dimension_preset":
		return "Must be a card size from the dimension catalog"
	default:
		return "Invalid value"
	}
}
