package taxliability

import "errors"

var (
	ErrInvalidPeriod      = errors.New("filing period must be YYYY or YYYY-Qn")
	ErrRunNotCommitted    = errors.New("only committed payroll runs can be recorded")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrQuarterRequired    = errors.New("payments must be recorded against a quarter")
	ErrInvalidPaymentSize = errors.New("payment amount must be positive")
)

var ErrUnauthorized = errors.New("not authorized to access tax liabilities")
