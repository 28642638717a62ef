package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/middleware"
)

// serverError logs the cause and answers with a generic 500.
func serverError(c *gin.Context, logger *slog.Logger, err error) {
	logger.ErrorContext(c.Request.Context(), "request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	apierrors.InternalError(c, "")
}

// currentUserID reads the authenticated user or answers 401.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// pathID parses a numeric path parameter or answers 400.
func pathID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}
