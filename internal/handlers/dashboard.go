package handlers

import (
	"net/http"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"

	"github.com/gin-gonic/gin"
)

func DashboardStats(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	stats, err := engine.BuildDashboard(database.DB, &user)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
