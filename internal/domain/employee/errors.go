package employee

import "errors"

var (
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrEmployeeCodeExists       = errors.New("employee code already exists")
	ErrEmailExists              = errors.New("email already registered in this company")
	ErrInvalidCompensationTerms = errors.New("exactly one of annual_salary and hourly_rate must be set, matching compensation_type")
	ErrUnauthorized             = errors.New("unauthorized to access this employee")
	ErrEmployeeAlreadyInactive  = errors.New("employee is already inactive")
)
