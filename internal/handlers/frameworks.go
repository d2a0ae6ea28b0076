package handlers

import (
	"net/http"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
)

type createFrameworkRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

func CreateFramework(c *gin.Context) {
	var req createFrameworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid framework payload")
		return
	}

	framework := models.Framework{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	}
	if err := database.DB.Create(&framework).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "framework with this name already exists"})
		return
	}
	c.JSON(http.StatusCreated, framework)
}

func ListFrameworks(c *gin.Context) {
	var frameworks []models.Framework
	if err := database.DB.Order("id asc").Find(&frameworks).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, frameworks)
}

func GetFramework(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var framework models.Framework
	if err := database.DB.Preload("Requirements").First(&framework, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "framework not found"})
		return
	}
	c.JSON(http.StatusOK, framework)
}

func DeleteFramework(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := engine.DeleteFramework(database.DB, id); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "framework deleted"})
}

type createRequirementRequest struct {
	FrameworkID uint   `json:"framework_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func CreateRequirement(c *gin.Context) {
	var req createRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid requirement payload")
		return
	}

	var framework models.Framework
	if err := database.DB.First(&framework, req.FrameworkID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "framework not found"})
		return
	}

	requirement := models.Requirement{
		FrameworkID: req.FrameworkID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := database.DB.Create(&requirement).Error; err != nil {
		// код уникален в пределах фреймворка
		c.JSON(http.StatusConflict, gin.H{"error": "requirement code already exists in this framework"})
		return
	}
	c.JSON(http.StatusCreated, requirement)
}

func ListRequirements(c *gin.Context) {
	q := database.DB.Order("id asc")
	if raw := c.Query("framework_id"); raw != "" {
		q = q.Where("framework_id = ?", raw)
	}
	var requirements []models.Requirement
	if err := q.Find(&requirements).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, requirements)
}
