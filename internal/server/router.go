package server

import (
	"net/http"

	"isms-platform/internal/config"
	"isms-platform/internal/handlers"
	"isms-platform/internal/middleware"
	"isms-platform/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handlers.EvidenceDir = cfg.EvidenceDir

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("isms_session", store))
	r.Use(middleware.InjectUser())

	// AUTH
	r.POST("/api/auth/login", handlers.Login)
	r.POST("/api/auth/logout", handlers.Logout)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	api.GET("/auth/me", handlers.Me)

	// ПОЛЬЗОВАТЕЛИ
	api.POST("/users",
		middleware.RequireRole(models.RoleAdmin),
		handlers.CreateUser,
	)
	api.GET("/users",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.ListUsers,
	)
	api.GET("/users/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.GetUser,
	)
	api.PUT("/users/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.UpdateUser,
	)

	// ФРЕЙМВОРКИ И ТРЕБОВАНИЯ
	api.POST("/frameworks",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateFramework,
	)
	api.GET("/frameworks", handlers.ListFrameworks)
	api.GET("/frameworks/:id", handlers.GetFramework)
	api.DELETE("/frameworks/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteFramework,
	)
	api.POST("/requirements",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateRequirement,
	)
	api.GET("/requirements", handlers.ListRequirements)

	// КОНТРОЛИ
	api.POST("/controls",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateControl,
	)
	api.GET("/controls", handlers.ListControls)
	api.GET("/controls/:id", handlers.GetControl)
	api.PUT("/controls/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.UpdateControl,
	)
	api.DELETE("/controls/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteControl,
	)

	// СВИДЕТЕЛЬСТВА
	api.POST("/evidence",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateEvidence,
	)
	api.GET("/evidence", handlers.ListEvidence)
	api.DELETE("/evidence/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.DeleteEvidence,
	)

	// ПОЛИТИКИ
	api.POST("/policies",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreatePolicy,
	)
	api.GET("/policies", handlers.ListPolicies)
	api.GET("/policies/:id", handlers.GetPolicy)
	api.PUT("/policies/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.UpdatePolicy,
	)
	api.POST("/policies/:id/publish",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.PublishPolicy,
	)
	api.GET("/policies/:id/versions",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.ListPolicyVersions,
	)
	api.DELETE("/policies/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeletePolicy,
	)

	// ОЗНАКОМЛЕНИЯ
	api.POST("/policy-acknowledgments", handlers.AcknowledgePolicy)
	api.GET("/policy-acknowledgments/pending", handlers.PendingAcknowledgments)

	// РИСКИ
	api.POST("/risks",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateRisk,
	)
	api.GET("/risks", handlers.ListRisks)
	api.GET("/risks/:id", handlers.GetRisk)
	api.GET("/risks/:id/history", handlers.GetRiskHistory)
	api.PUT("/risks/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.UpdateRisk,
	)
	api.DELETE("/risks/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteRisk,
	)

	// АЛЕРТЫ
	api.GET("/alerts", handlers.ListAlerts)
	api.POST("/alerts",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.CreateAlert,
	)
	api.POST("/alerts/:id/resolve",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.ResolveAlert,
	)

	// ДАШБОРД И ОТЧЁТЫ
	api.GET("/dashboard/stats", handlers.DashboardStats)
	api.GET("/reports/policy-acknowledgments/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleComplianceOfficer),
		handlers.PolicyAcknowledgmentReport,
	)
	api.GET("/reports/risk-register", handlers.RiskRegisterReport)
	api.GET("/reports/compliance/:framework_id", handlers.ComplianceReport)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
