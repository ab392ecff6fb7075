package wallet

// DepositRequest credits an account. Amount is in the smallest currency unit.
type DepositRequest struct {
	UserID string `validate:"required"`
	Amount int64  `validate:"required,gt=0"`
}

// DepositResponse reports the balance after a successful deposit.
type DepositResponse struct {
	UserID     string
	NewBalance int64
}

// WithdrawRequest debits an account.
type WithdrawRequest struct {
	UserID string `validate:"required"`
	Amount int64  `validate:"required,gt=0"`
}

// WithdrawResponse reports the balance after a successful withdrawal.
type WithdrawResponse struct {
	UserID     string
	NewBalance int64
}

// TransferRequest moves an amount between two distinct accounts.
type TransferRequest struct {
	FromUserID string `validate:"required"`
	ToUserID   string `validate:"required,nefield=FromUserID"`
	Amount     int64  `validate:"required,gt=0"`
}

// TransferResponse reports both balances after a successful transfer.
type TransferResponse struct {
	FromUserID  string
	ToUserID    string
	Amount      int64
	FromBalance int64
	ToBalance   int64
}

// AdminAdjustRequest sets an account balance directly. Only admins may do
// this.
type AdminAdjustRequest struct {
	ActingAdminID string `validate:"required"`
	TargetUserID  string `validate:"required"`
	NewBalance    int64  `validate:"gte=0"`
}

// AdminAdjustResponse reports the balance after an administrative adjustment.
type AdminAdjustResponse struct {
	TargetUserID string
	NewBalance   int64
}
