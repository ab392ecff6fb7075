package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// Repository is the slice of the account repository the engine needs: a
// fresh point read and the single-field authoritative balance write.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, id string, newBalance int64) error
}

// Notifier appends to the per-account notification feed.
type Notifier interface {
	Append(ctx context.Context, userID, message string) (*domain.Notification, error)
}

// SessionRefresher re-resolves the cached current-user view after a
// mutation.
type SessionRefresher interface {
	Refresh(ctx context.Context) (*domain.Account, error)
}

// Engine is the only component permitted to change balance semantics. Every
// operation reads the balance fresh from the repository, validates, persists
// the new value, then records notifications and refreshes the session cache.
// Notification and refresh failures are logged, never fatal: once the
// balance write lands, the operation has succeeded.
type Engine struct {
	repo     Repository
	notifier Notifier
	sessions SessionRefresher
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new Engine. sessions may be nil when no cached view needs
// refreshing (e.g. in batch tooling).
func New(repo Repository, notifier Notifier, sessions SessionRefresher, log *zap.Logger) *Engine {
	return &Engine{
		repo:     repo,
		notifier: notifier,
		sessions: sessions,
		log:      log,
		validate: validator.New(),
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
			case "gt":
				messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "nefield":
				messages = append(messages, fmt.Sprintf("%s must differ from %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return fmt.Errorf("validation failed: %s", strings.Join(messages, ", "))
	}
	return err
}

// Deposit credits amount to the account and records a notification.
func (e *Engine) Deposit(ctx context.Context, in DepositRequest) (*DepositResponse, error) {
	if err := e.validate.Struct(in); err != nil {
		e.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	acct, err := e.repo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	newBalance := acct.Balance + in.Amount
	if newBalance < 0 {
		// Both operands are positive, so a negative sum means int64 overflow.
		e.log.Warn("deposit rejected, balance overflow",
			zap.String("user_id", in.UserID), zap.Int64("amount", in.Amount), zap.Int64("balance", acct.Balance))
		return nil, fmt.Errorf("validation failed: Amount exceeds the representable balance")
	}
	if err := e.repo.UpdateBalance(ctx, in.UserID, newBalance); err != nil {
		e.log.Error("deposit write failed", zap.String("user_id", in.UserID), zap.Error(err))
		return nil, err
	}

	e.notify(ctx, in.UserID, fmt.Sprintf("Deposit of %s received.", FormatAmount(in.Amount)))
	e.refreshSessions(ctx)

	e.log.Info("deposit applied",
		zap.String("user_id", in.UserID), zap.Int64("amount", in.Amount), zap.Int64("balance", newBalance))
	return &DepositResponse{UserID: in.UserID, NewBalance: newBalance}, nil
}

// Withdraw debits amount from the account. A debit exceeding the fresh
// balance is rejected with InsufficientFundsError and the balance is left
// untouched.
func (e *Engine) Withdraw(ctx context.Context, in WithdrawRequest) (*WithdrawResponse, error) {
	if err := e.validate.Struct(in); err != nil {
		e.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	acct, err := e.repo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Amount > acct.Balance {
		e.log.Warn("withdrawal rejected",
			zap.String("user_id", in.UserID), zap.Int64("amount", in.Amount), zap.Int64("balance", acct.Balance))
		return nil, apperrors.NewInsufficientFundsError(in.UserID, in.Amount, acct.Balance)
	}

	newBalance := acct.Balance - in.Amount
	if err := e.repo.UpdateBalance(ctx, in.UserID, newBalance); err != nil {
		e.log.Error("withdrawal write failed", zap.String("user_id", in.UserID), zap.Error(err))
		return nil, err
	}

	e.notify(ctx, in.UserID, fmt.Sprintf("Withdrawal of %s processed.", FormatAmount(in.Amount)))
	e.refreshSessions(ctx)

	e.log.Info("withdrawal applied",
		zap.String("user_id", in.UserID), zap.Int64("amount", in.Amount), zap.Int64("balance", newBalance))
	return &WithdrawResponse{UserID: in.UserID, NewBalance: newBalance}, nil
}

// Transfer moves amount from one account to another. The remote store offers
// no multi-row transaction, so the debit is written first and the credit
// second; a failed credit triggers a compensating write of the original
// sender balance. The caller sees TransferPartialFailureError for any failed
// credit leg; Reversed tells whether the compensation landed.
func (e *Engine) Transfer(ctx context.Context, in TransferRequest) (*TransferResponse, error) {
	if err := e.validate.Struct(in); err != nil {
		e.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	from, err := e.repo.GetByID(ctx, in.FromUserID)
	if err != nil {
		return nil, err
	}

	to, err := e.repo.GetByID(ctx, in.ToUserID)
	if err != nil {
		if _, ok := err.(*apperrors.NotFoundError); ok {
			return nil, apperrors.NewUnknownRecipientError(in.ToUserID)
		}
		return nil, err
	}

	if in.Amount > from.Balance {
		e.log.Warn("transfer rejected",
			zap.String("from", in.FromUserID), zap.Int64("amount", in.Amount), zap.Int64("balance", from.Balance))
		return nil, apperrors.NewInsufficientFundsError(in.FromUserID, in.Amount, from.Balance)
	}

	newFromBalance := from.Balance - in.Amount
	newToBalance := to.Balance + in.Amount
	if newToBalance < 0 {
		// Rejected before the debit leg so neither balance is touched.
		e.log.Warn("transfer rejected, recipient balance overflow",
			zap.String("to", in.ToUserID), zap.Int64("amount", in.Amount), zap.Int64("balance", to.Balance))
		return nil, fmt.Errorf("validation failed: Amount exceeds the representable balance")
	}

	if err := e.repo.UpdateBalance(ctx, in.FromUserID, newFromBalance); err != nil {
		// Debit never landed; plain failure, both balances untouched.
		e.log.Error("transfer debit failed", zap.String("from", in.FromUserID), zap.Error(err))
		return nil, err
	}

	if err := e.repo.UpdateBalance(ctx, in.ToUserID, newToBalance); err != nil {
		e.log.Error("transfer credit failed, compensating debit",
			zap.String("from", in.FromUserID), zap.String("to", in.ToUserID), zap.Error(err))

		if compErr := e.repo.UpdateBalance(ctx, in.FromUserID, from.Balance); compErr != nil {
			e.log.Error("debit reversal failed, manual reconciliation required",
				zap.String("from", in.FromUserID), zap.String("to", in.ToUserID),
				zap.Int64("amount", in.Amount), zap.Error(compErr))
			return nil, apperrors.NewTransferPartialFailureError(in.FromUserID, in.ToUserID, in.Amount, false, err)
		}

		return nil, apperrors.NewTransferPartialFailureError(in.FromUserID, in.ToUserID, in.Amount, true, err)
	}

	e.notify(ctx, in.FromUserID, fmt.Sprintf("Transfer of %s sent to %s.", FormatAmount(in.Amount), to.Username))
	e.notify(ctx, in.ToUserID, fmt.Sprintf("Transfer of %s received from %s.", FormatAmount(in.Amount), from.Username))
	e.refreshSessions(ctx)

	e.log.Info("transfer applied",
		zap.String("from", in.FromUserID), zap.String("to", in.ToUserID), zap.Int64("amount", in.Amount))
	return &TransferResponse{
		FromUserID:  in.FromUserID,
		ToUserID:    in.ToUserID,
		Amount:      in.Amount,
		FromBalance: newFromBalance,
		ToBalance:   newToBalance,
	}, nil
}

// AdminAdjust sets the target balance directly. The acting user must be an
// admin; a non-admin is rejected before anything is read or written to the
// target.
func (e *Engine) AdminAdjust(ctx context.Context, in AdminAdjustRequest) (*AdminAdjustResponse, error) {
	if err := e.validate.Struct(in); err != nil {
		e.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	acting, err := e.repo.GetByID(ctx, in.ActingAdminID)
	if err != nil {
		return nil, err
	}
	if !acting.IsAdmin {
		e.log.Warn("admin adjustment denied",
			zap.String("acting_user", in.ActingAdminID), zap.String("target", in.TargetUserID))
		return nil, apperrors.NewNotAuthorizedError(in.ActingAdminID, "administrative privileges required")
	}

	if _, err := e.repo.GetByID(ctx, in.TargetUserID); err != nil {
		return nil, err
	}

	if err := e.repo.UpdateBalance(ctx, in.TargetUserID, in.NewBalance); err != nil {
		e.log.Error("admin adjustment write failed", zap.String("target", in.TargetUserID), zap.Error(err))
		return nil, err
	}

	e.notify(ctx, in.TargetUserID,
		fmt.Sprintf("Balance adjusted to %s by administrator %s.", FormatAmount(in.NewBalance), acting.Username))
	e.refreshSessions(ctx)

	e.log.Info("admin adjustment applied",
		zap.String("acting_admin", in.ActingAdminID), zap.String("target", in.TargetUserID),
		zap.Int64("balance", in.NewBalance))
	return &AdminAdjustResponse{TargetUserID: in.TargetUserID, NewBalance: in.NewBalance}, nil
}

// notify appends a notification and logs delivery failures. The balance
// change is authoritative regardless of notification delivery.
func (e *Engine) notify(ctx context.Context, userID, message string) {
	if _, err := e.notifier.Append(ctx, userID, message); err != nil {
		e.log.Warn("notification delivery failed",
			zap.String("user_id", userID), zap.String("message", message), zap.Error(err))
	}
}

// refreshSessions re-resolves the cached current-user view; failures are
// logged and swallowed.
func (e *Engine) refreshSessions(ctx context.Context) {
	if e.sessions == nil {
		return
	}
	if _, err := e.sessions.Refresh(ctx); err != nil {
		e.log.Warn("session cache refresh failed", zap.Error(err))
	}
}
