package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivot2ai/jobplans/internal/models"
	"github.com/pivot2ai/jobplans/internal/plan"
)

func setupStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	cleanup := func() { sqlDB.Close() }
	return New(db), mock, cleanup
}

func validDocument() plan.Document {
	return plan.Document{
		PlanID:        "MJP-2025-0042",
		EquipmentName: "Centrifugal Pump P-101",
		ScopeOfWork:   "Replace mechanical seal",
		JobSteps: []plan.Step{
			{StepNumber: 1, Description: "Isolate and lock out"},
		},
		ToolsRequired: []string{"seal installation kit"},
	}
}

func TestCreatePlan(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO "job_plans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	row, err := s.CreatePlan(context.Background(), validDocument())
	require.NoError(t, err)
	assert.Equal(t, uint(7), row.ID)
	assert.Equal(t, "MJP-2025-0042", row.PlanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePlanDuplicatePlanID(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO "job_plans"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreatePlan(context.Background(), validDocument())
	assert.ErrorIs(t, err, ErrDuplicatePlanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePlanValidationFailurePerformsNoWrite(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	doc := validDocument()
	doc.EquipmentName = ""

	_, err := s.CreatePlan(context.Background(), doc)

	var verr *plan.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "equipmentName", verr.Violations[0].Field)
	// No SQL was expected and none may have run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlanNotFound(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "job_plans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetPlan(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlan(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM "job_plans"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.DeletePlan(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlanNotFound(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM "job_plans"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeletePlan(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "name", "password", "is_admin",
		"generation_count", "subscription_status", "date_created",
	}).AddRow(1, "tech@example.com", "Tech", "hash", false, 3, models.SubscriptionNone, time.Now())
}

func TestConsumeGenerationCredit(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "user_auths" SET "generation_count"=generation_count \+ 1`).
		WithArgs(uint(1), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.ConsumeGenerationCredit(context.Background(), 1, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeGenerationCreditQuotaExceeded(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "user_auths"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "user_auths"`).
		WillReturnRows(userRows())

	err := s.ConsumeGenerationCredit(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeGenerationCreditUnknownUser(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "user_auths"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "user_auths"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := s.ConsumeGenerationCredit(context.Background(), 42, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSubscriptionStatus(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	// The payment collaborator echoes back whatever casing the checkout form
	// collected, so the email match must be case-insensitive.
	mock.ExpectExec(`UPDATE "user_auths" SET "subscription_status".+WHERE LOWER\(email\) = LOWER\(\$2\)`).
		WithArgs(models.SubscriptionActive, "Tech@Example.COM").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.SetSubscriptionStatus(context.Background(), "Tech@Example.COM", models.SubscriptionActive))

	mock.ExpectExec(`UPDATE "user_auths" SET "subscription_status"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetSubscriptionStatus(context.Background(), "ghost@example.com", models.SubscriptionActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByEmailMatchesAnyCase(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "user_auths" WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Tech@Example.COM").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "password", "is_admin",
			"generation_count", "subscription_status", "date_created",
		}).AddRow(7, "tech@example.com", "Tech", "hash", false, 1, "none", time.Now()))

	user, err := s.GetUserByEmail(context.Background(), "Tech@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "tech@example.com", user.Email)
}

func TestGetPlanByPlanID(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "job_plans" WHERE plan_id = \$1`).
		WithArgs("MJP-2025-0042").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "equipment_name", "scope_of_work"}).
			AddRow(9, "MJP-2025-0042", "Pump", "Inspection"))

	row, err := s.GetPlanByPlanID(context.Background(), "MJP-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, uint(9), row.ID)
	assert.Equal(t, "MJP-2025-0042", row.PlanID)

	mock.ExpectQuery(`SELECT \* FROM "job_plans" WHERE plan_id = \$1`).
		WithArgs("MJP-2025-9999").
		WillReturnError(gorm.ErrRecordNotFound)

	_, err = s.GetPlanByPlanID(context.Background(), "MJP-2025-9999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePlanOverlaysPatch(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "job_plans"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "plan_id", "equipment_name", "equipment_model", "equipment_serial",
			"scope_of_work", "job_steps", "tools_required", "materials_required",
			"manpower_count", "skill_levels", "estimated_time", "safety_ppe",
			"safety_procedures", "safety_hazards", "best_practices", "recommendations",
			"applicable_codes", "notes", "status", "date_created",
		}).AddRow(
			3, "MJP-2025-0003", "Pump", "", "",
			"Seal replacement", []byte(`[]`), "{wrench,gauge}", "{}",
			"2", "{}", "4h", "{}",
			"{}", "{}", "", []byte(`{"manuals":[],"procedures":[]}`),
			"{}", "", "draft", now,
		))
	mock.ExpectExec(`UPDATE "job_plans"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	patch := []byte(`{"toolsRequired":["impact driver"],"notes":"night shift"}`)
	row, err := s.UpdatePlan(context.Background(), 3, patch)
	require.NoError(t, err)

	// A field present in the patch wholly replaces the prior value.
	assert.Equal(t, []string{"impact driver"}, []string(row.ToolsRequired))
	assert.Equal(t, "night shift", row.Notes)
	// Untouched fields survive, identity and timestamp cannot be patched.
	assert.Equal(t, "Seal replacement", row.ScopeOfWork)
	assert.Equal(t, uint(3), row.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlanRejectsInvalidResult(t *testing.T) {
	s, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "job_plans"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "plan_id", "equipment_name", "scope_of_work", "status", "date_created",
		}).AddRow(3, "MJP-2025-0003", "Pump", "Seal replacement", "draft", now))

	_, err := s.UpdatePlan(context.Background(), 3, []byte(`{"equipmentName":""}`))

	var verr *plan.ValidationError
	assert.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
}
