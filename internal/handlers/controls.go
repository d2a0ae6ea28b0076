package handlers

import (
	"net/http"
	"strconv"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
)

type createControlRequest struct {
	Title                 string               `json:"title" binding:"required"`
	Description           string               `json:"description"`
	Status                models.ControlStatus `json:"status"`
	OwnerID               *uint                `json:"owner_id"`
	ImplementationDetails string               `json:"implementation_details"`
	RequirementIDs        []uint               `json:"requirement_ids"`
}

func CreateControl(c *gin.Context) {
	var req createControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid control payload")
		return
	}

	control, err := engine.CreateControl(database.DB, engine.CreateControlInput{
		Title:                 req.Title,
		Description:           req.Description,
		ImplementationDetails: req.ImplementationDetails,
		Status:                req.Status,
		OwnerID:               req.OwnerID,
		RequirementIDs:        req.RequirementIDs,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, control)
}

func ListControls(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var controls []models.Control
	if err := database.DB.Preload("Requirements").
		Order("id asc").Offset(skip).Limit(limit).Find(&controls).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, controls)
}

func GetControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var control models.Control
	if err := database.DB.Preload("Requirements").First(&control, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
		return
	}
	c.JSON(http.StatusOK, control)
}

type updateControlRequest struct {
	Title                 *string               `json:"title"`
	Description           *string               `json:"description"`
	Status                *models.ControlStatus `json:"status"`
	OwnerID               *uint                 `json:"owner_id"`
	ImplementationDetails *string               `json:"implementation_details"`
	RequirementIDs        []uint                `json:"requirement_ids"`
}

func UpdateControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid control payload")
		return
	}

	control, err := engine.UpdateControl(database.DB, id, engine.UpdateControlInput{
		Title:                 req.Title,
		Description:           req.Description,
		ImplementationDetails: req.ImplementationDetails,
		Status:                req.Status,
		OwnerID:               req.OwnerID,
		RequirementIDs:        req.RequirementIDs,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, control)
}

func DeleteControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := engine.DeleteControl(database.DB, id); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "control deleted"})
}
