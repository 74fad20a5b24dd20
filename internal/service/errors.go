package service

import "errors"

// тексты ошибок показываются пользователю как есть
var (
	ErrDuplicateRegistration = errors.New("User with this phone or email already exists.")
	ErrInvalidCredentials    = errors.New("Invalid credentials or user not found.")
	ErrAccountBlocked        = errors.New("Your account is blocked. Contact support.")
	ErrInsufficientBalance   = errors.New("Insufficient balance")
	ErrNotAdmin              = errors.New("Invalid Admin Credentials")

	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidSignup       = errors.New("invalid signup data")
	ErrInvalidProfile      = errors.New("invalid profile data")
	ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")

	ErrDailyLimitReached = errors.New("Daily ad limit reached. Come back tomorrow.")

	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidMethod         = errors.New("unsupported payout method")
	ErrMissingAccountDetails = errors.New("account details are required")
	ErrBelowMinWithdrawal    = errors.New("amount is below the minimum withdrawal")

	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrWithdrawalProcessed = errors.New("withdrawal already processed")
	ErrInvalidDecision     = errors.New("decision must be approved or rejected")
	ErrInvalidSettings     = errors.New("invalid settings")
	ErrCannotBlockAdmin    = errors.New("admin accounts cannot be blocked")
	ErrInvalidStatus       = errors.New("unknown user status")

	ErrInvalidOTP        = errors.New("Invalid OTP entered.")
	ErrChallengeNotFound = errors.New("OTP expired or not found")
	ErrInvalidSession    = errors.New("session is invalid or expired")

	ErrAuditUnavailable = errors.New("audit log storage is not configured")
)
