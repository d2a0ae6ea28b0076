package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"isms-platform/internal/engine"
	"isms-platform/internal/middleware"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// EvidenceDir — каталог для загруженных файлов свидетельств,
// выставляется при сборке роутера.
var EvidenceDir = "./evidence"

// engineError переводит вид ошибки движка в HTTP-статус. Это
// единственное место, где ошибки домена встречаются с HTTP.
func engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func mustCurrentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return models.User{}, false
	}
	return user, true
}
