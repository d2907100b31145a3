package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	logger       *slog.Logger
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, logger *slog.Logger) employee.EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		logger:       logger,
	}
}

func requirePermission(ctx context.Context, permission user.Permission) (auth.Principal, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	if !p.Can(permission) {
		return auth.Principal{}, employee.ErrUnauthorized
	}
	return p, nil
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	p, err := requirePermission(ctx, user.PermissionEmployeeManage)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newEmployee := req.ToEntity(p.CompanyID)
	if err := newEmployee.CheckCompensation(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, newEmployee)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.logger.Info("employee created",
		"company_id", p.CompanyID,
		"employee_id", created.ID,
		"compensation_type", created.CompensationType,
		"actor", p.UserID,
	)
	return employee.NewEmployeeResponse(created), nil
}

// GetEmployee allows self-service reads of the caller's own record.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !p.Can(user.PermissionEmployeeViewAll) && !p.IsEmployee(id) {
		return employee.EmployeeResponse{}, employee.ErrUnauthorized
	}

	found, err := s.employeeRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(found), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	p, err := requirePermission(ctx, user.PermissionEmployeeViewAll)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	filter.Normalize()

	employees, total, err := s.employeeRepo.List(ctx, p.CompanyID, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	resp := employee.ListEmployeeResponse{
		Employees:  make([]employee.EmployeeResponse, 0, len(employees)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, e := range employees {
		resp.Employees = append(resp.Employees, employee.NewEmployeeResponse(e))
	}
	return resp, nil
}

// UpdateEmployee changes terms for future runs only. Committed line items keep their snapshot.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	p, err := requirePermission(ctx, user.PermissionEmployeeManage)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByID(ctx, req.ID, p.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated := req.Apply(existing)
	if err := updated.CheckCompensation(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	saved, err := s.employeeRepo.Update(ctx, updated)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.logger.Info("employee updated", "company_id", p.CompanyID, "employee_id", saved.ID, "actor", p.UserID)
	return employee.NewEmployeeResponse(saved), nil
}

func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	p, err := requirePermission(ctx, user.PermissionEmployeeManage)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if existing.Status == employee.StatusInactive {
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}

	if err := s.employeeRepo.SetStatus(ctx, id, p.CompanyID, employee.StatusInactive); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to deactivate employee: %w", err)
	}
	existing.Status = employee.StatusInactive

	s.logger.Info("employee deactivated", "company_id", p.CompanyID, "employee_id", id, "actor", p.UserID)
	return employee.NewEmployeeResponse(existing), nil
}
