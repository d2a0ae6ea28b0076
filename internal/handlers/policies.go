package handlers

import (
	"net/http"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"

	"github.com/gin-gonic/gin"
)

type createPolicyRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Version string `json:"version"`
}

func CreatePolicy(c *gin.Context) {
	var req createPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid policy payload")
		return
	}

	policy, err := engine.CreatePolicy(database.DB, engine.CreatePolicyInput{
		Title:   req.Title,
		Content: req.Content,
		Version: req.Version,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, policy)
}

func ListPolicies(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	policies, err := engine.ListPolicies(database.DB, user.Role)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}

func GetPolicy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	policy, err := engine.GetPolicy(database.DB, id, user.Role)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

type updatePolicyRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Version *string `json:"version"`
}

func UpdatePolicy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid policy payload")
		return
	}

	policy, err := engine.UpdatePolicy(database.DB, id, engine.UpdatePolicyInput{
		Title:   req.Title,
		Content: req.Content,
		Version: req.Version,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func PublishPolicy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	policy, err := engine.PublishPolicy(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func ListPolicyVersions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	versions, err := engine.PolicyVersions(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func DeletePolicy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := engine.DeletePolicy(database.DB, id); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "policy deleted"})
}

type acknowledgeRequest struct {
	PolicyID uint `json:"policy_id" binding:"required"`
}

func AcknowledgePolicy(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid acknowledgment payload")
		return
	}

	ack, err := engine.AcknowledgePolicy(database.DB, req.PolicyID, user.ID)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ack)
}

func PendingAcknowledgments(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	pending, err := engine.PendingPolicies(database.DB, user.ID)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}
