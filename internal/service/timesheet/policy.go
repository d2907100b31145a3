package timesheet

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

// ReviewerPolicy decides who may approve or reject an employee's timesheet.
type ReviewerPolicy struct{}

// CanReview requires the approve permission, forbids self-review, and when the
// employee has a designated manager limits review to that manager or an owner.
func (ReviewerPolicy) CanReview(p auth.Principal, emp employee.Employee) bool {
	if !p.Can(user.PermissionTimesheetApprove) {
		return false
	}
	if p.IsEmployee(emp.ID) || (emp.UserID != nil && *emp.UserID == p.UserID) {
		return false
	}
	if emp.ManagerUserID != nil && *emp.ManagerUserID != "" {
		return *emp.ManagerUserID == p.UserID || p.Role == user.RoleOwner
	}
	return true
}
