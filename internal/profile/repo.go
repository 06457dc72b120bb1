package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/techpostia/techpost/internal/models"
	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	GetOrCreate(ctx context.Context, userID, email, fullName string) (*models.Profile, error)
	UpdateDetails(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error)
	IncrementUsage(ctx context.Context, userID string) (int, error)
	MarkVIP(ctx context.Context, userID, plan string) (bool, error)
	SetAsaasCustomerID(ctx context.Context, userID, customerID string) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

type ProfileRepository struct {
	db *bun.DB
}

func NewProfileRepository(db *bun.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.ProfileDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.ProfileDB)(nil)).
		Index("idx_profiles_email").
		Column("email").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	profileDB := new(models.ProfileDB)
	err := r.db.NewSelect().
		Model(profileDB).
		Where("id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profileDB.ToProfile(), nil
}

func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID, email, fullName string) (*models.Profile, error) {
	p, err := r.GetByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	profileDB := models.ProfileFromDomain(&models.Profile{
		ID:        userID,
		Email:     email,
		FullName:  fullName,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	})
	// A concurrent first request may have created the row already.
	if _, err := r.db.NewInsert().Model(profileDB).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

func (r *ProfileRepository) UpdateDetails(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	q := r.db.NewUpdate().
		Model((*models.ProfileDB)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID)

	if upd.FullName != nil {
		q = q.Set("full_name = ?", *upd.FullName)
	}
	if upd.UsageType != nil {
		q = q.Set("usage_type = ?", *upd.UsageType)
	}
	if upd.DefaultChannel != nil {
		q = q.Set("default_channel = ?", *upd.DefaultChannel)
	}
	if upd.DefaultAudience != nil {
		q = q.Set("default_audience = ?", *upd.DefaultAudience)
	}
	if upd.DefaultTone != nil {
		q = q.Set("default_tone = ?", *upd.DefaultTone)
	}
	if upd.DefaultObjective != nil {
		q = q.Set("default_objective = ?", *upd.DefaultObjective)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, userID)
}

// IncrementUsage adds one generation to the counter in a single statement and
// returns the new value.
func (r *ProfileRepository) IncrementUsage(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.NewUpdate().
		Model((*models.ProfileDB)(nil)).
		Set("usage_count = usage_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Returning("usage_count").
		Scan(ctx, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return count, err
}

// MarkVIP grants the paid entitlement. It reports whether a profile matched.
func (r *ProfileRepository) MarkVIP(ctx context.Context, userID, plan string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.ProfileDB)(nil)).
		Set("is_vip = ?", true).
		Set("plan = ?", plan).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProfileRepository) SetAsaasCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.ProfileDB)(nil)).
		Set("asaas_customer_id = ?", customerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func (r *ProfileRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.ProfileDB)(nil)).
		Set("stripe_customer_id = ?", customerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
