// Package store is the persistence adapter: it maps job plan documents to
// and from their stored rows and owns the durable copy of record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pivot2ai/jobplans/internal/models"
	"github.com/pivot2ai/jobplans/internal/plan"
)

var (
	// ErrNotFound is returned for reads, updates and deletes against an
	// unknown id or plan identifier.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePlanID is returned when a create collides with an existing
	// plan identifier. Uniqueness is enforced by the store's unique
	// constraint, so a failed create performs no write.
	ErrDuplicatePlanID = errors.New("plan id already exists")

	// ErrQuotaExceeded is returned when a user has spent all free
	// generation credits.
	ErrQuotaExceeded = errors.New("generation quota exceeded")
)

// Store provides database access for plans, users and generation records.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open GORM handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreatePlan validates doc and inserts it, assigning the surrogate id and
// creation timestamp. A duplicate plan identifier yields ErrDuplicatePlanID.
func (s *Store) CreatePlan(ctx context.Context, doc plan.Document) (*models.JobPlan, error) {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	row := models.NewJobPlan(doc)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePlanID
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &row, nil
}

// GetPlan fetches a plan by surrogate id.
func (s *Store) GetPlan(ctx context.Context, id uint) (*models.JobPlan, error) {
	var row models.JobPlan
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &row, nil
}

// GetPlanByPlanID fetches a plan by its human-facing identifier.
func (s *Store) GetPlanByPlanID(ctx context.Context, planID string) (*models.JobPlan, error) {
	var row models.JobPlan
	if err := s.db.WithContext(ctx).Where("plan_id = ?", planID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plan by plan id: %w", err)
	}
	return &row, nil
}

// ListPlans returns every stored plan in store order. Data volumes are small
// enough that pagination is not worth its surface.
func (s *Store) ListPlans(ctx context.Context) ([]models.JobPlan, error) {
	var rows []models.JobPlan
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return rows, nil
}

// UpdatePlan overlays a partial JSON patch onto the stored row and saves it.
// Any field present in the patch wholly replaces the prior value; nested
// lists are not merged, a shorter list truncates. Identity and creation
// timestamp cannot be patched.
func (s *Store) UpdatePlan(ctx context.Context, id uint, patch json.RawMessage) (*models.JobPlan, error) {
	row, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	created := row.CreatedAt
	if err := json.Unmarshal(patch, row); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	row.ID = id
	row.CreatedAt = created

	doc := row.Document()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePlanID
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return row, nil
}

// DeletePlan removes a plan permanently.
func (s *Store) DeletePlan(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.JobPlan{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.UserAuth) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user already exists: %w", err)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email. Matching is case-insensitive:
// payment webhooks echo back whatever casing the checkout form collected.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// ConsumeGenerationCredit spends one of the user's free generations. The
// read-check-increment happens as a single conditional UPDATE so concurrent
// generation requests cannot lose updates or slip past the limit.
func (s *Store) ConsumeGenerationCredit(ctx context.Context, userID uint, limit int) error {
	res := s.db.WithContext(ctx).
		Model(&models.UserAuth{}).
		Where("id = ? AND generation_count < ?", userID, limit).
		UpdateColumn("generation_count", gorm.Expr("generation_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("consume generation credit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the user is unknown or the quota is spent.
		if _, err := s.GetUser(ctx, userID); err != nil {
			return err
		}
		return ErrQuotaExceeded
	}
	return nil
}

// SetSubscriptionStatus records the subscription state observed from the
// payment collaborator. The email is matched case-insensitively since the
// checkout form's casing is outside our control.
func (s *Store) SetSubscriptionStatus(ctx context.Context, email, status string) error {
	res := s.db.WithContext(ctx).
		Model(&models.UserAuth{}).
		Where("LOWER(email) = LOWER(?)", email).
		Update("subscription_status", status)
	if res.Error != nil {
		return fmt.Errorf("set subscription status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordGeneration persists an audit entry for one generation call. Failures
// are reported but must not block the caller's main path.
func (s *Store) RecordGeneration(ctx context.Context, rec *models.GenerationRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}
