package employee

import "context"

// EmployeeService defines the employee registry operations. The tenant is taken from the request principal.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeactivateEmployee moves the employee to inactive. Records are never hard-deleted.
	DeactivateEmployee(ctx context.Context, id string) (EmployeeResponse, error)
}
