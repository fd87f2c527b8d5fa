// Package respond holds the error and parameter helpers shared by handlers.
package respond

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

// Error writes {"error": ...} for err. Missing fields, not-found and unique
// violations keep their meaning; everything else is logged and hidden behind a generic 500.
func Error(c *gin.Context, log *zap.Logger, err error, what string) {
	switch {
	case errors.Is(err, store.ErrMissingField), errors.Is(err, store.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, store.ErrConflict), store.IsUniqueViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": what + " already exists"})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// BadRequest writes a 400 with msg.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// ID parses the :id path parameter, writing a 400 when it is not a positive integer.
func ID(c *gin.Context) (int64, bool) {
	return Int64Param(c, "id")
}

func Int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
