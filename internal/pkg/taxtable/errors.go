package taxtable

import "errors"

var (
	ErrUnknownTaxYear      = errors.New("no withholding table for tax year")
	ErrUnknownFilingStatus = errors.New("no federal brackets for filing status")
	ErrUnknownJurisdiction = errors.New("no state rate for jurisdiction")
	ErrInvalidPeriods      = errors.New("periods per year must be positive")
	ErrInvalidTable        = errors.New("invalid withholding table")
)
