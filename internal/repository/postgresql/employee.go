package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, company_id, user_id, manager_user_id, employee_code, full_name, email,
	compensation_type, annual_salary_cents, hourly_rate_cents, non_exempt,
	filing_status, allowances, additional_withholding_cents, work_state, status,
	hire_date, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e          employee.Employee
		salary     *int64
		rate       *int64
		additional int64
	)
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.ManagerUserID, &e.EmployeeCode, &e.FullName, &e.Email,
		&e.CompensationType, &salary, &rate, &e.NonExempt,
		&e.FilingStatus, &e.Allowances, &additional, &e.WorkState, &e.Status,
		&e.HireDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	e.AnnualSalary = centsFromNullable(salary)
	e.HourlyRate = centsFromNullable(rate)
	e.AdditionalWithholding = money.Cents(additional)
	return e, nil
}

func mapEmployeeWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "employees_code_key"):
		return employee.ErrEmployeeCodeExists
	case isUniqueViolation(err, "employees_email_key"):
		return employee.ErrEmailExists
	}
	return err
}

func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	query := `
		INSERT INTO employees (
			id, company_id, user_id, manager_user_id, employee_code, full_name, email,
			compensation_type, annual_salary_cents, hourly_rate_cents, non_exempt,
			filing_status, allowances, additional_withholding_cents, work_state, status, hire_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		id.String(), newEmployee.CompanyID, newEmployee.UserID, newEmployee.ManagerUserID,
		newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Email,
		newEmployee.CompensationType, centsArg(newEmployee.AnnualSalary), centsArg(newEmployee.HourlyRate),
		newEmployee.NonExempt, newEmployee.FilingStatus, newEmployee.Allowances,
		int64(newEmployee.AdditionalWithholding), newEmployee.WorkState, newEmployee.Status, newEmployee.HireDate,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", mapEmployeeWriteError(err))
	}
	return created, nil
}

func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2`

	found, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return found, nil
}

func (e *employeeRepositoryImpl) List(ctx context.Context, companyID string, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR employee_code ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY employee_code LIMIT $%d OFFSET $%d`,
		employeeColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (e *employeeRepositoryImpl) ListActive(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1 AND status = 'active' ORDER BY employee_code`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET
			manager_user_id = $3, full_name = $4, email = $5,
			compensation_type = $6, annual_salary_cents = $7, hourly_rate_cents = $8, non_exempt = $9,
			filing_status = $10, allowances = $11, additional_withholding_cents = $12,
			work_state = $13, status = $14, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + employeeColumns

	updated, err := scanEmployee(q.QueryRow(ctx, query,
		emp.ID, emp.CompanyID, emp.ManagerUserID, emp.FullName, emp.Email,
		emp.CompensationType, centsArg(emp.AnnualSalary), centsArg(emp.HourlyRate), emp.NonExempt,
		emp.FilingStatus, emp.Allowances, int64(emp.AdditionalWithholding),
		emp.WorkState, emp.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee: %w", mapEmployeeWriteError(err))
	}
	return updated, nil
}

func (e *employeeRepositoryImpl) SetStatus(ctx context.Context, id string, companyID string, status employee.EmploymentStatus) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, status)
	if err != nil {
		return fmt.Errorf("failed to set employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
