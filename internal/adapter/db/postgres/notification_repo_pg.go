package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// NotificationRepoPG persists the append-only per-account notification feed.
// Rows are only ever inserted or have their read flag flipped; there is no
// delete path.
type NotificationRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewNotificationRepoPG creates a new instance of NotificationRepoPG.
func NewNotificationRepoPG(db *gorm.DB, log *zap.Logger) *NotificationRepoPG {
	return &NotificationRepoPG{db: db, log: log}
}

// NotificationSchema represents the database schema for the notifications table.
type NotificationSchema struct {
	ID      string    `gorm:"primaryKey"`
	UserID  string    `gorm:"not null;index"`
	Message string    `gorm:"not null"`
	Date    time.Time `gorm:"not null"`
	Read    bool      `gorm:"not null;default:false"`
}

// TableName specifies the table name for the NotificationSchema model.
func (NotificationSchema) TableName() string {
	return "notifications"
}

// Append records a new unread notification for the given account.
func (r *NotificationRepoPG) Append(ctx context.Context, userID, message string) (*account.Notification, error) {
	model := NotificationSchema{
		ID:      uuid.New().String(),
		UserID:  userID,
		Message: message,
		Date:    time.Now().UTC(),
		Read:    false,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to append notification", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.NewPersistenceError("notification append", err)
	}

	r.log.Debug("notification appended", zap.String("user_id", userID), zap.String("id", model.ID))
	return &account.Notification{
		ID:      model.ID,
		UserID:  model.UserID,
		Message: model.Message,
		Date:    model.Date,
		Read:    model.Read,
	}, nil
}

// ListByUser returns the notification feed for an account, newest first.
func (r *NotificationRepoPG) ListByUser(ctx context.Context, userID string) ([]account.Notification, error) {
	var models []NotificationSchema
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc").Find(&models).Error; err != nil {
		r.log.Error("failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]account.Notification, len(models))
	for i, model := range models {
		notifications[i] = account.Notification{
			ID:      model.ID,
			UserID:  model.UserID,
			Message: model.Message,
			Date:    model.Date,
			Read:    model.Read,
		}
	}

	return notifications, nil
}

// MarkRead flips the read flag of a single notification. The write is scoped
// by both notification id and owning user id so one account can never touch
// another account's feed.
func (r *NotificationRepoPG) MarkRead(ctx context.Context, id, userID string, read bool) error {
	tx := r.db.WithContext(ctx).Model(&NotificationSchema{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", read)
	if tx.Error != nil {
		r.log.Error("failed to mark notification", zap.String("id", id), zap.Error(tx.Error))
		return apperrors.NewPersistenceError("notification update", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.NewNotFoundError("notification", fmt.Sprintf("notification not found: id=%s", id))
	}

	return nil
}
