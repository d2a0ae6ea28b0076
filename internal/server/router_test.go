package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"isms-platform/internal/config"
	"isms-platform/internal/database"
	"isms-platform/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{
		SessionSecret: "test-secret",
		EvidenceDir:   t.TempDir(),
	}
	return NewRouter(cfg)
}

func registerUser(t *testing.T, email, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		FullName:     "Test " + email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func login(t *testing.T, router *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/auth/login",
		gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, "admin@test.local", "Admin123!", models.RoleAdmin)

	// без сессии закрыто
	rec := doRequest(t, router, http.MethodGet, "/api/dashboard/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login",
		gin.H{"email": "admin@test.local", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookies := login(t, router, "admin@test.local", "Admin123!")

	rec = doRequest(t, router, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "admin@test.local", me.Email)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/stats", nil, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGates(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, "admin@test.local", "Admin123!", models.RoleAdmin)
	registerUser(t, "emp@test.local", "Employee123!", models.RoleEmployee)

	adminCookies := login(t, router, "admin@test.local", "Admin123!")
	empCookies := login(t, router, "emp@test.local", "Employee123!")

	riskBody := gin.H{"title": "phishing", "likelihood": 4, "impact": 4}

	rec := doRequest(t, router, http.MethodPost, "/api/risks", riskBody, empCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/risks", riskBody, adminCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var risk models.Risk
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &risk))
	assert.Equal(t, 16, risk.RiskScore)
	assert.Equal(t, models.RiskHigh, risk.RiskLevel)

	// чтение открыто всем аутентифицированным
	rec = doRequest(t, router, http.MethodGet, "/api/risks", nil, empCookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	// удаление только админу
	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/risks/%d", risk.ID), nil, empCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/risks/%d", risk.ID), nil, adminCookies)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPolicyVisibilityOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, "admin@test.local", "Admin123!", models.RoleAdmin)
	registerUser(t, "emp@test.local", "Employee123!", models.RoleEmployee)

	adminCookies := login(t, router, "admin@test.local", "Admin123!")
	empCookies := login(t, router, "emp@test.local", "Employee123!")

	rec := doRequest(t, router, http.MethodPost, "/api/policies",
		gin.H{"title": "AUP", "content": "be nice"}, adminCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var policy models.Policy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &policy))

	// черновик существует, но для сотрудника закрыт
	rec = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/policies/%d", policy.ID), nil, empCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/policies/%d/publish", policy.ID), nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/policies/%d", policy.ID), nil, empCookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	ackBody := gin.H{"policy_id": policy.ID}
	rec = doRequest(t, router, http.MethodPost, "/api/policy-acknowledgments", ackBody, empCookies)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/policy-acknowledgments", ackBody, empCookies)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/policy-acknowledgments/pending", nil, empCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.Policy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Empty(t, pending)
}

func TestNotFoundMapping(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, "admin@test.local", "Admin123!", models.RoleAdmin)
	adminCookies := login(t, router, "admin@test.local", "Admin123!")

	rec := doRequest(t, router, http.MethodGet, "/api/risks/999", nil, adminCookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/policies/999",
		gin.H{"title": "x"}, adminCookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
