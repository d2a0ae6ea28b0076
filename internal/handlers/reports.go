package handlers

import (
	"net/http"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"

	"github.com/gin-gonic/gin"
)

func PolicyAcknowledgmentReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	report, err := engine.BuildAcknowledgmentReport(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func RiskRegisterReport(c *gin.Context) {
	register, err := engine.BuildRiskRegister(database.DB)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"risks": register, "total_count": len(register)})
}

func ComplianceReport(c *gin.Context) {
	id, ok := parseID(c, "framework_id")
	if !ok {
		return
	}
	report, err := engine.BuildComplianceReport(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
