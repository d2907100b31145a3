package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	List(ctx context.Context, companyID string, filter EmployeeFilter) ([]Employee, int64, error)
	// ListActive returns every active employee of the company ordered by employee code.
	ListActive(ctx context.Context, companyID string) ([]Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	SetStatus(ctx context.Context, id string, companyID string, status EmploymentStatus) error
}
