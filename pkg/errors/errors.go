package errors

import "fmt"

// NotFoundError represents a missing row or session.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// InsufficientFundsError is returned when a debit exceeds the current balance.
// The balance is guaranteed untouched.
type InsufficientFundsError struct {
	UserID    string
	Requested int64
	Available int64
}

// NewInsufficientFundsError creates a new insufficient funds error
func NewInsufficientFundsError(userID string, requested, available int64) *InsufficientFundsError {
	return &InsufficientFundsError{UserID: userID, Requested: requested, Available: available}
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %d, available %d", e.Requested, e.Available)
}

// NotAuthorizedError is returned when a non-admin invokes an administrative
// operation.
type NotAuthorizedError struct {
	UserID  string
	Message string
}

// NewNotAuthorizedError creates a new not authorized error
func NewNotAuthorizedError(userID, message string) *NotAuthorizedError {
	return &NotAuthorizedError{UserID: userID, Message: message}
}

// Error implements the error interface
func (e *NotAuthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("user %s is not authorized", e.UserID)
}

// UnknownRecipientError is returned when a transfer names a recipient that
// does not exist.
type UnknownRecipientError struct {
	RecipientID string
}

// NewUnknownRecipientError creates a new unknown recipient error
func NewUnknownRecipientError(recipientID string) *UnknownRecipientError {
	return &UnknownRecipientError{RecipientID: recipientID}
}

// Error implements the error interface
func (e *UnknownRecipientError) Error() string {
	return fmt.Sprintf("unknown transfer recipient: %s", e.RecipientID)
}

// PersistenceError wraps a failed store write. For single-row operations the
// balance is guaranteed unchanged when this is returned.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence failed during %s", e.Op)
}

// Unwrap returns the wrapped error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TransferPartialFailureError is returned when the credit leg of a transfer
// fails after the debit leg has been applied. Reversed reports whether the
// compensating write restored the sender balance; Reversed == false means the
// stores are inconsistent and require manual reconciliation.
type TransferPartialFailureError struct {
	FromID   string
	ToID     string
	Amount   int64
	Reversed bool
	Err      error
}

// NewTransferPartialFailureError creates a new transfer partial failure error
func NewTransferPartialFailureError(fromID, toID string, amount int64, reversed bool, err error) *TransferPartialFailureError {
	return &TransferPartialFailureError{FromID: fromID, ToID: toID, Amount: amount, Reversed: reversed, Err: err}
}

// Error implements the error interface
func (e *TransferPartialFailureError) Error() string {
	if e.Reversed {
		return fmt.Sprintf("transfer of %d from %s to %s failed, debit reversed: %v", e.Amount, e.FromID, e.ToID, e.Err)
	}
	return fmt.Sprintf("transfer of %d from %s to %s failed and debit reversal failed, manual reconciliation required: %v", e.Amount, e.FromID, e.ToID, e.Err)
}

// Unwrap returns the wrapped error
func (e *TransferPartialFailureError) Unwrap() error {
	return e.Err
}
