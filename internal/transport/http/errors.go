package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sustainability-quiz-service/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

var validationErrors = []error{
	domain.ErrInvalidSessionID,
	domain.ErrInvalidAge,
	domain.ErrInvalidGender,
	domain.ErrInvalidAnswer,
	domain.ErrInvalidQuestionNumber,
	domain.ErrInvalidTotal,
	domain.ErrQuestionNotFound,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps err onto a status. Validation failures use badRequest as the message,
// unexpected errors are logged under op and answered with failure.
func (h *Handler) respondError(c *gin.Context, op, badRequest, failure string, err error) {
	switch {
	case isValidation(err):
		c.JSON(http.StatusBadRequest, errorResponse{Message: badRequest})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: "Session not found"})
	case errors.Is(err, domain.ErrSessionExists):
		c.JSON(http.StatusConflict, errorResponse{Message: "Session already exists"})
	case errors.Is(err, domain.ErrSessionCompleted):
		c.JSON(http.StatusConflict, errorResponse{Message: "Session already completed"})
	case errors.Is(err, domain.ErrSessionFull):
		c.JSON(http.StatusConflict, errorResponse{Message: "All questions already answered"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Message: "Forbidden"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: "User not found"})
	default:
		h.log.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Message: failure})
	}
}
