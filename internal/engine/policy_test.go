package engine

import (
	"testing"

	"isms-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestPolicy(t *testing.T, db *gorm.DB, title string) *models.Policy {
	t.Helper()
	policy, err := CreatePolicy(db, CreatePolicyInput{Title: title, Content: "v1 content"})
	require.NoError(t, err)
	return policy
}

func TestCreatePolicyDefaultsVersion(t *testing.T) {
	db := newTestDB(t)

	policy, err := CreatePolicy(db, CreatePolicyInput{Title: "p", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "1.0", policy.Version)
	assert.False(t, policy.IsPublished)
}

func TestUpdatePolicySnapshotsOnContentChange(t *testing.T) {
	db := newTestDB(t)
	policy := createTestPolicy(t, db, "p")

	// смена только метки версии снимка не создаёт
	version := "2.0"
	_, err := UpdatePolicy(db, policy.ID, UpdatePolicyInput{Version: &version})
	require.NoError(t, err)

	versions, err := PolicyVersions(db, policy.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	// изменение содержимого снимает снимок с версией ДО изменения
	content := "v2 content"
	updated, err := UpdatePolicy(db, policy.ID, UpdatePolicyInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "v2 content", updated.Content)

	versions, err = PolicyVersions(db, policy.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "2.0", versions[0].Version)
	assert.Equal(t, "v1 content", versions[0].Content)

	// то же содержимое — снимка нет
	_, err = UpdatePolicy(db, policy.ID, UpdatePolicyInput{Content: &content})
	require.NoError(t, err)
	versions, err = PolicyVersions(db, policy.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestUpdatePolicyRejectsEmptyVersion(t *testing.T) {
	db := newTestDB(t)
	policy := createTestPolicy(t, db, "p")

	version := "   "
	_, err := UpdatePolicy(db, policy.ID, UpdatePolicyInput{Version: &version})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAcknowledgePolicy(t *testing.T) {
	db := newTestDB(t)
	employee := createTestUser(t, db, "emp@test.local", models.RoleEmployee)
	policy := createTestPolicy(t, db, "p")

	_, err := PublishPolicy(db, policy.ID)
	require.NoError(t, err)

	ack, err := AcknowledgePolicy(db, policy.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0", ack.PolicyVersion)

	// повторное ознакомление той же версии — конфликт, а не no-op
	_, err = AcknowledgePolicy(db, policy.ID, employee.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = AcknowledgePolicy(db, 999, employee.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepublishClearsCurrentVersionAcks(t *testing.T) {
	db := newTestDB(t)
	employee := createTestUser(t, db, "emp@test.local", models.RoleEmployee)
	policy := createTestPolicy(t, db, "p")

	_, err := PublishPolicy(db, policy.ID)
	require.NoError(t, err)
	_, err = AcknowledgePolicy(db, policy.ID, employee.ID)
	require.NoError(t, err)

	// повторная публикация той же версии сбрасывает её ознакомления
	_, err = PublishPolicy(db, policy.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PolicyAcknowledgment{}).Count(&count).Error)
	assert.Zero(t, count)

	// сотрудник может ознакомиться заново
	_, err = AcknowledgePolicy(db, policy.ID, employee.ID)
	require.NoError(t, err)
}

func TestRepublishKeepsOldVersionAcks(t *testing.T) {
	db := newTestDB(t)
	employee := createTestUser(t, db, "emp@test.local", models.RoleEmployee)
	policy := createTestPolicy(t, db, "p")

	_, err := PublishPolicy(db, policy.ID)
	require.NoError(t, err)
	_, err = AcknowledgePolicy(db, policy.ID, employee.ID)
	require.NoError(t, err)

	content, version := "v2 content", "2.0"
	_, err = UpdatePolicy(db, policy.ID, UpdatePolicyInput{Content: &content, Version: &version})
	require.NoError(t, err)
	_, err = PublishPolicy(db, policy.ID)
	require.NoError(t, err)

	// запись об ознакомлении с 1.0 остаётся как исторический след
	var old int64
	require.NoError(t, db.Model(&models.PolicyAcknowledgment{}).
		Where("policy_version = ?", "1.0").Count(&old).Error)
	assert.EqualValues(t, 1, old)

	// но текущая версия снова ждёт подтверждения
	pending, err := PendingPolicies(db, employee.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, policy.ID, pending[0].ID)
}

func TestPendingPolicies(t *testing.T) {
	db := newTestDB(t)
	employee := createTestUser(t, db, "emp@test.local", models.RoleEmployee)

	p1 := createTestPolicy(t, db, "p1")
	p2 := createTestPolicy(t, db, "p2")
	createTestPolicy(t, db, "draft") // непубликованная не в счёт

	_, err := PublishPolicy(db, p1.ID)
	require.NoError(t, err)
	_, err = PublishPolicy(db, p2.ID)
	require.NoError(t, err)

	_, err = AcknowledgePolicy(db, p1.ID, employee.ID)
	require.NoError(t, err)

	pending, err := PendingPolicies(db, employee.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p2.ID, pending[0].ID)
}

func TestPolicyVisibilityByRole(t *testing.T) {
	db := newTestDB(t)

	draft := createTestPolicy(t, db, "draft")
	published := createTestPolicy(t, db, "published")
	_, err := PublishPolicy(db, published.ID)
	require.NoError(t, err)

	// существующая, но непубликованная — Forbidden для сотрудника
	_, err = GetPolicy(db, draft.ID, models.RoleEmployee)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = GetPolicy(db, draft.ID, models.RoleComplianceOfficer)
	assert.NoError(t, err)

	_, err = GetPolicy(db, 999, models.RoleEmployee)
	assert.ErrorIs(t, err, ErrNotFound)

	visible, err := ListPolicies(db, models.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, published.ID, visible[0].ID)

	all, err := ListPolicies(db, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeletePolicyCascades(t *testing.T) {
	db := newTestDB(t)
	employee := createTestUser(t, db, "emp@test.local", models.RoleEmployee)
	policy := createTestPolicy(t, db, "p")

	content := "v2"
	_, err := UpdatePolicy(db, policy.ID, UpdatePolicyInput{Content: &content})
	require.NoError(t, err)
	_, err = PublishPolicy(db, policy.ID)
	require.NoError(t, err)
	_, err = AcknowledgePolicy(db, policy.ID, employee.ID)
	require.NoError(t, err)

	require.NoError(t, DeletePolicy(db, policy.ID))

	var snapshots, acks int64
	require.NoError(t, db.Model(&models.PolicyVersion{}).Count(&snapshots).Error)
	require.NoError(t, db.Model(&models.PolicyAcknowledgment{}).Count(&acks).Error)
	assert.Zero(t, snapshots)
	assert.Zero(t, acks)
}
