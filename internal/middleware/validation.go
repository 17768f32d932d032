package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
)

// ContextValidatedBody is where ValidateRequest stores the bound body
const ContextValidatedBody = "validatedBody"

// ValidateRequest binds and validates the JSON body into a fresh T and
// stores it under ContextValidatedBody. Binding runs the validator/v10
// `binding` tags.
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := new(T)
		if err := c.ShouldBindJSON(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}

		c.Set(ContextValidatedBody, body)
		c.Next()
	}
}

// ValidatedBody returns the body stored by ValidateRequest[T].
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	value, exists := c.Get(ContextValidatedBody)
	if !exists {
		return nil, false
	}
	body, ok := value.(*T)
	return body, ok
}
