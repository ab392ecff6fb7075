package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// Repository defines the data access operations the account usecase needs
// from the profile store. It is the only gateway to profile rows.
type Repository interface {
	Insert(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	ListAll(ctx context.Context) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error
	UpdateBalance(ctx context.Context, id string, newBalance int64) error
}

// Notifications defines access to the append-only notification feed.
type Notifications interface {
	Append(ctx context.Context, userID, message string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string, read bool) error
}

// AuthService abstracts the remote auth sub-service: identity lifecycle and
// session resolution. Token internals stay behind this interface.
type AuthService interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string) (string, error)
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

// Usecase implements account lifecycle and profile management: registration,
// login, current-user resolution, profile updates and admin listings.
type Usecase struct {
	repo            Repository
	notifications   Notifications
	auth            AuthService
	startingBalance int64
	log             *zap.Logger
	validate        *validator.Validate
}

// New creates a new account Usecase. startingBalance is the server-assigned
// balance given to every self-registered account.
func New(repo Repository, notifications Notifications, auth AuthService, startingBalance int64, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:            repo,
		notifications:   notifications,
		auth:            auth,
		startingBalance: startingBalance,
		log:             log,
		validate:        validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return fmt.Errorf("validation failed: %s", strings.Join(messages, ", "))
	}
	return err
}

// usernameFromEmail derives the immutable username: the local part of the
// email, lower-cased.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}

// Register runs the two-phase account creation saga: create the auth
// identity, then insert the profile row. If the profile insert fails the
// orphaned identity is deleted as a compensating step.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*domain.Account, error) {
	uc.log.Info("registering account", zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id, err := uc.auth.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		uc.log.Error("failed to create identity", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	acct := &domain.Account{
		ID:          id,
		Email:       in.Email,
		FullName:    in.FullName,
		Username:    usernameFromEmail(in.Email),
		PhoneNumber: in.PhoneNumber,
		IsAdmin:     false,
		IsVerified:  false,
		Balance:     uc.startingBalance,
	}

	if err := uc.repo.Insert(ctx, acct); err != nil {
		uc.log.Error("profile insert failed, compensating identity", zap.String("id", id), zap.Error(err))
		if delErr := uc.auth.DeleteIdentity(ctx, id); delErr != nil {
			uc.log.Error("compensating identity delete failed, orphaned identity remains",
				zap.String("id", id), zap.Error(delErr))
			return nil, fmt.Errorf("profile insert failed and identity %s was orphaned: %w", id, err)
		}
		return nil, fmt.Errorf("profile insert failed, identity rolled back: %w", err)
	}

	uc.log.Info("account registered", zap.String("id", id), zap.String("username", acct.Username))
	return acct, nil
}

// AdminCreate creates an account on behalf of an administrator, with
// caller-chosen flags and starting balance. Same saga as Register.
func (uc *Usecase) AdminCreate(ctx context.Context, in AdminCreateRequest) (*domain.Account, error) {
	uc.log.Info("admin creating account", zap.String("acting_admin", in.ActingAdminID), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.requireAdmin(ctx, in.ActingAdminID); err != nil {
		return nil, err
	}

	id, err := uc.auth.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		uc.log.Error("failed to create identity", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	acct := &domain.Account{
		ID:          id,
		Email:       in.Email,
		FullName:    in.FullName,
		Username:    usernameFromEmail(in.Email),
		PhoneNumber: in.PhoneNumber,
		IsAdmin:     in.IsAdmin,
		IsVerified:  in.IsVerified,
		Balance:     in.StartingBalance,
	}

	if err := uc.repo.Insert(ctx, acct); err != nil {
		uc.log.Error("profile insert failed, compensating identity", zap.String("id", id), zap.Error(err))
		if delErr := uc.auth.DeleteIdentity(ctx, id); delErr != nil {
			uc.log.Error("compensating identity delete failed, orphaned identity remains",
				zap.String("id", id), zap.Error(delErr))
			return nil, fmt.Errorf("profile insert failed and identity %s was orphaned: %w", id, err)
		}
		return nil, fmt.Errorf("profile insert failed, identity rolled back: %w", err)
	}

	uc.log.Info("account created by admin", zap.String("id", id), zap.String("acting_admin", in.ActingAdminID))
	return acct, nil
}

// Login opens a session and returns its token alongside the account.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (string, *domain.Account, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return "", nil, formatValidationError(err)
	}

	token, err := uc.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		return "", nil, err
	}

	acct, err := uc.FetchCurrent(ctx, token)
	if err != nil {
		// Close the session that was just opened so a failed login does not
		// leave a live token behind until TTL.
		if loErr := uc.auth.Logout(ctx, token); loErr != nil {
			uc.log.Warn("failed to close session after login error", zap.Error(loErr))
		}
		return "", nil, err
	}

	return token, acct, nil
}

// Logout closes the session behind a token.
func (uc *Usecase) Logout(ctx context.Context, token string) error {
	return uc.auth.Logout(ctx, token)
}

// FetchCurrent resolves the session token to its account and attaches the
// notification feed, newest first.
func (uc *Usecase) FetchCurrent(ctx context.Context, token string) (*domain.Account, error) {
	session, err := uc.auth.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	acct, err := uc.repo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	notifications, err := uc.notifications.ListByUser(ctx, session.UserID)
	if err != nil {
		// The account itself resolved; a feed read failure should not block
		// the caller.
		uc.log.Warn("failed to load notifications", zap.String("user_id", session.UserID), zap.Error(err))
	} else {
		acct.Notifications = notifications
	}

	return acct, nil
}

// ListAll returns every account for the admin panel. A store failure is a
// failure, not an empty list.
func (uc *Usecase) ListAll(ctx context.Context) ([]domain.Account, error) {
	accounts, err := uc.repo.ListAll(ctx)
	if err != nil {
		uc.log.Error("failed to list accounts", zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// UpdateProfile writes the provided subset of mutable profile fields.
func (uc *Usecase) UpdateProfile(ctx context.Context, in UpdateProfileRequest) error {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return formatValidationError(err)
	}

	upd := domain.ProfileUpdate{
		FullName:          in.FullName,
		PhoneNumber:       in.PhoneNumber,
		ProfilePictureURL: in.ProfilePictureURL,
		IsVerified:        in.IsVerified,
	}
	if upd.Empty() {
		uc.log.Debug("empty profile update, nothing to do", zap.String("user_id", in.UserID))
		return nil
	}

	if err := uc.repo.UpdateProfile(ctx, in.UserID, upd); err != nil {
		uc.log.Error("failed to update profile", zap.String("user_id", in.UserID), zap.Error(err))
		return err
	}

	uc.log.Info("profile updated", zap.String("user_id", in.UserID))
	return nil
}

// MarkNotificationRead flips the read flag of one notification owned by the
// given account.
func (uc *Usecase) MarkNotificationRead(ctx context.Context, userID, notificationID string, read bool) error {
	if err := uc.notifications.MarkRead(ctx, notificationID, userID, read); err != nil {
		uc.log.Error("failed to mark notification",
			zap.String("user_id", userID), zap.String("notification_id", notificationID), zap.Error(err))
		return err
	}
	return nil
}

func (uc *Usecase) requireAdmin(ctx context.Context, actingAdminID string) error {
	acting, err := uc.repo.GetByID(ctx, actingAdminID)
	if err != nil {
		return err
	}
	if !acting.IsAdmin {
		uc.log.Warn("administrative action denied", zap.String("acting_user", actingAdminID))
		return apperrors.NewNotAuthorizedError(actingAdminID, "administrative privileges required")
	}
	return nil
}
