package handlers

import (
	"net/http"
	"strconv"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
)

type createRiskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Likelihood  int               `json:"likelihood" binding:"required"`
	Impact      int               `json:"impact" binding:"required"`
	Status      models.RiskStatus `json:"status"`
	OwnerID     *uint             `json:"owner_id"`
	ControlIDs  []uint            `json:"control_ids"`
}

func CreateRisk(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req createRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid risk payload")
		return
	}

	risk, err := engine.CreateRisk(database.DB, user.ID, engine.CreateRiskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Likelihood:  req.Likelihood,
		Impact:      req.Impact,
		Status:      req.Status,
		OwnerID:     req.OwnerID,
		ControlIDs:  req.ControlIDs,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, risk)
}

func ListRisks(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var risks []models.Risk
	if err := database.DB.Order("id asc").Offset(skip).Limit(limit).Find(&risks).Error; err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, risks)
}

func GetRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var risk models.Risk
	if err := database.DB.Preload("Controls").First(&risk, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk not found"})
		return
	}
	c.JSON(http.StatusOK, risk)
}

func GetRiskHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := engine.RiskHistoryEntries(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type updateRiskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Likelihood  *int               `json:"likelihood"`
	Impact      *int               `json:"impact"`
	Status      *models.RiskStatus `json:"status"`
	OwnerID     *uint              `json:"owner_id"`
	ControlIDs  []uint             `json:"control_ids"`
}

func UpdateRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req updateRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid risk payload")
		return
	}

	risk, err := engine.UpdateRisk(database.DB, user.ID, id, engine.UpdateRiskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Likelihood:  req.Likelihood,
		Impact:      req.Impact,
		Status:      req.Status,
		OwnerID:     req.OwnerID,
		ControlIDs:  req.ControlIDs,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

func DeleteRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := engine.DeleteRisk(database.DB, id); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "risk deleted"})
}
