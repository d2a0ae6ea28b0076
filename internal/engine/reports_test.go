package engine

import (
	"testing"

	"isms-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcknowledgmentReport(t *testing.T) {
	db := newTestDB(t)
	emp1 := createTestUser(t, db, "emp1@test.local", models.RoleEmployee)
	emp2 := createTestUser(t, db, "emp2@test.local", models.RoleEmployee)

	// неактивные сотрудники и другие роли в отчёт не попадают
	inactive := createTestUser(t, db, "gone@test.local", models.RoleEmployee)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)
	createTestUser(t, db, "officer@test.local", models.RoleComplianceOfficer)

	policy := createTestPolicy(t, db, "p")
	_, err := PublishPolicy(db, policy.ID)
	require.NoError(t, err)
	_, err = AcknowledgePolicy(db, policy.ID, emp1.ID)
	require.NoError(t, err)

	report, err := BuildAcknowledgmentReport(db, policy.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalUsers)
	assert.Equal(t, 1, report.AcknowledgedCount)
	assert.Equal(t, 1, report.PendingCount)
	assert.Equal(t, 50.0, report.AcknowledgmentRate)
	require.Len(t, report.PendingUsers, 1)
	assert.Equal(t, emp2.ID, report.PendingUsers[0].ID)

	_, err = BuildAcknowledgmentReport(db, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRiskRegister(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@test.local", models.RoleAdmin)
	owner := createTestUser(t, db, "owner@test.local", models.RoleComplianceOfficer)
	control := createTestControl(t, db, "MFA", models.ControlImplemented)

	_, err := CreateRisk(db, admin.ID, CreateRiskInput{
		Title: "owned", Likelihood: 3, Impact: 4,
		OwnerID: &owner.ID, ControlIDs: []uint{control.ID},
	})
	require.NoError(t, err)
	_, err = CreateRisk(db, admin.ID, CreateRiskInput{Title: "orphan", Likelihood: 1, Impact: 1})
	require.NoError(t, err)

	register, err := BuildRiskRegister(db)
	require.NoError(t, err)
	require.Len(t, register, 2)

	assert.Equal(t, owner.FullName, register[0].Owner)
	assert.Equal(t, []string{"MFA"}, register[0].MitigatingControls)
	assert.Equal(t, 12, register[0].RiskScore)
	assert.Equal(t, models.RiskHigh, register[0].RiskLevel)

	assert.Equal(t, "Unassigned", register[1].Owner)
	assert.Empty(t, register[1].MitigatingControls)
}

func TestComplianceReport(t *testing.T) {
	db := newTestDB(t)
	framework, reqIDs := createTestFramework(t, db, "SOC2", 2)

	shared := createTestControl(t, db, "shared", models.ControlImplemented, reqIDs...)
	createTestControl(t, db, "single", models.ControlInProgress, reqIDs[0])

	_, err := CreateEvidence(db, CreateEvidenceInput{ControlID: shared.ID, Title: "e"})
	require.NoError(t, err)

	report, err := BuildComplianceReport(db, framework.ID)
	require.NoError(t, err)

	assert.Equal(t, "SOC2", report.FrameworkName)
	// по строке на каждую пару требование×контроль
	require.Len(t, report.Requirements, 3)

	byControl := map[string]int{}
	for _, row := range report.Requirements {
		byControl[row.ControlTitle]++
		if row.ControlTitle == "shared" {
			assert.Equal(t, 1, row.EvidenceCount)
		}
		assert.Equal(t, "Unassigned", row.ControlOwner)
	}
	assert.Equal(t, 2, byControl["shared"])
	assert.Equal(t, 1, byControl["single"])

	_, err = BuildComplianceReport(db, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
