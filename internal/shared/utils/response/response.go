package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Success writes a success envelope with the given status code.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure envelope. details is optional error detail
// (validation messages and the like); internals such as stack traces or
// SQL text must never be passed here.
func Error(c *gin.Context, code int, message string, details interface{}) {
	c.JSON(code, Envelope{
		Success: false,
		Message: message,
		Error:   details,
	})
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError writes a 400 envelope. Validator failures are expanded
// into a per-field detail array; anything else falls back to the plain
// error text.
func ValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, FieldError{
				Field: fieldErr.Field(),
				Rule:  fieldErr.Tag(),
				Param: fieldErr.Param(),
			})
		}
		Error(c, http.StatusBadRequest, "Validation failed", details)
		return
	}
	Error(c, http.StatusBadRequest, "Validation failed", err.Error())
}
