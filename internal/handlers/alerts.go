package handlers

import (
	"net/http"
	"time"

	"isms-platform/internal/database"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAlerts(c *gin.Context) {
	q := database.DB.Order("created_at desc")
	if c.Query("include_resolved") != "true" {
		q = q.Where("is_resolved = ?", false)
	}
	var alerts []models.Alert
	if err := q.Find(&alerts).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

type createAlertRequest struct {
	Title            string               `json:"title" binding:"required"`
	Description      string               `json:"description"`
	Severity         models.AlertSeverity `json:"severity"`
	RelatedControlID *uint                `json:"related_control_id"`
}

func CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid alert payload")
		return
	}
	severity := req.Severity
	if severity == "" {
		severity = models.AlertInfo
	}
	if !severity.Valid() {
		badRequest(c, "unknown severity")
		return
	}

	if req.RelatedControlID != nil {
		var control models.Control
		if err := database.DB.First(&control, *req.RelatedControlID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
			return
		}
	}

	alert := models.Alert{
		Title:            req.Title,
		Description:      req.Description,
		Severity:         severity,
		RelatedControlID: req.RelatedControlID,
	}
	if err := database.DB.Create(&alert).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func ResolveAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var alert models.Alert
	if err := database.DB.First(&alert, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if !alert.IsResolved {
		now := time.Now().UTC()
		alert.IsResolved = true
		alert.ResolvedAt = &now
		if err := database.DB.Save(&alert).Error; err != nil {
			engineError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, alert)
}
