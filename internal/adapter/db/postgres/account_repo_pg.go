package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// AccountRepoPG is the sole gateway between the Account entity and the
// profiles table. Every write it issues is scoped to exactly one row by id;
// there is no batch balance write.
type AccountRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAccountRepoPG creates a new instance of AccountRepoPG.
func NewAccountRepoPG(db *gorm.DB, log *zap.Logger) *AccountRepoPG {
	return &AccountRepoPG{db: db, log: log}
}

// ProfileSchema represents the database schema for the profiles table.
type ProfileSchema struct {
	ID                string `gorm:"primaryKey"` // Assigned by the auth service, never generated here
	Email             string `gorm:"not null;unique"`
	FullName          string
	Username          string `gorm:"not null"`
	PhoneNumber       string
	IsAdmin           bool
	IsVerified        bool
	Balance           int64 `gorm:"not null"`
	ProfilePictureURL string
}

// TableName specifies the table name for the ProfileSchema model.
func (ProfileSchema) TableName() string {
	return "profiles"
}

func (s *ProfileSchema) toEntity() *account.Account {
	return &account.Account{
		ID:                s.ID,
		Email:             s.Email,
		FullName:          s.FullName,
		Username:          s.Username,
		PhoneNumber:       s.PhoneNumber,
		IsAdmin:           s.IsAdmin,
		IsVerified:        s.IsVerified,
		Balance:           s.Balance,
		ProfilePictureURL: s.ProfilePictureURL,
	}
}

// Insert creates the profile row for a freshly registered account.
func (r *AccountRepoPG) Insert(ctx context.Context, a *account.Account) error {
	if a == nil {
		return errors.New("account cannot be nil")
	}

	model := ProfileSchema{
		ID:                a.ID,
		Email:             a.Email,
		FullName:          a.FullName,
		Username:          a.Username,
		PhoneNumber:       a.PhoneNumber,
		IsAdmin:           a.IsAdmin,
		IsVerified:        a.IsVerified,
		Balance:           a.Balance,
		ProfilePictureURL: a.ProfilePictureURL,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to insert profile", zap.String("id", a.ID), zap.Error(err))
		return apperrors.NewPersistenceError("profile insert", err)
	}

	r.log.Info("profile created", zap.String("id", a.ID), zap.String("username", a.Username))
	return nil
}

// GetByID retrieves an account by its unique id. Notifications are not
// attached at this layer; they are fetched on demand.
func (r *AccountRepoPG) GetByID(ctx context.Context, id string) (*account.Account, error) {
	var model ProfileSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("profile not found", zap.String("id", id))
			return nil, apperrors.NewNotFoundError("profile", fmt.Sprintf("profile not found: id=%s", id))
		}
		r.log.Error("failed to get profile", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return model.toEntity(), nil
}

// ListAll returns every profile row. A store error is returned as an error,
// never silently collapsed into an empty result, so callers can tell "no
// users" apart from "query failed".
func (r *AccountRepoPG) ListAll(ctx context.Context) ([]account.Account, error) {
	var models []ProfileSchema
	if err := r.db.WithContext(ctx).Order("username").Find(&models).Error; err != nil {
		r.log.Error("failed to list profiles", zap.Error(err))
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	accounts := make([]account.Account, len(models))
	for i, model := range models {
		accounts[i] = *model.toEntity()
	}

	return accounts, nil
}

// UpdateProfile writes only the fields set in upd. Balance is deliberately
// not reachable through this method; balance writes go through UpdateBalance
// only.
func (r *AccountRepoPG) UpdateProfile(ctx context.Context, id string, upd account.ProfileUpdate) error {
	if upd.Empty() {
		return nil
	}

	updates := map[string]interface{}{}
	if upd.FullName != nil {
		updates["full_name"] = *upd.FullName
	}
	if upd.PhoneNumber != nil {
		updates["phone_number"] = *upd.PhoneNumber
	}
	if upd.ProfilePictureURL != nil {
		updates["profile_picture_url"] = *upd.ProfilePictureURL
	}
	if upd.IsVerified != nil {
		updates["is_verified"] = *upd.IsVerified
	}

	tx := r.db.WithContext(ctx).Model(&ProfileSchema{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		r.log.Error("failed to update profile", zap.String("id", id), zap.Error(tx.Error))
		return apperrors.NewPersistenceError("profile update", tx.Error)
	}
	if tx.RowsAffected == 0 {
		r.log.Warn("profile not found for update", zap.String("id", id))
		return apperrors.NewNotFoundError("profile", fmt.Sprintf("profile not found: id=%s", id))
	}

	r.log.Info("profile updated", zap.String("id", id))
	return nil
}

// UpdateBalance is the single-field authoritative balance write. The caller
// must have computed the new value from a fresh read; no read-modify-write
// happens here.
func (r *AccountRepoPG) UpdateBalance(ctx context.Context, id string, newBalance int64) error {
	if newBalance < 0 {
		return fmt.Errorf("balance must not be negative, got %d", newBalance)
	}

	tx := r.db.WithContext(ctx).Model(&ProfileSchema{}).Where("id = ?", id).Update("balance", newBalance)
	if tx.Error != nil {
		r.log.Error("failed to update balance", zap.String("id", id), zap.Error(tx.Error))
		return apperrors.NewPersistenceError("balance update", tx.Error)
	}
	if tx.RowsAffected == 0 {
		r.log.Warn("profile not found for balance update", zap.String("id", id))
		return apperrors.NewNotFoundError("profile", fmt.Sprintf("profile not found: id=%s", id))
	}

	r.log.Info("balance updated", zap.String("id", id), zap.Int64("balance", newBalance))
	return nil
}
