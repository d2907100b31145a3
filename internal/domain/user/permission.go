package user

type Permission string

const (
	// Timesheets
	PermissionTimesheetManageOwn Permission = "timesheet.manage_own"
	PermissionTimesheetViewAll   Permission = "timesheet.view_all"
	PermissionTimesheetApprove   Permission = "timesheet.approve"

	// Employee Registry
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Payroll Runs
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollRun     Permission = "payroll.run"
	PermissionPayrollCommit  Permission = "payroll.commit"
	PermissionPayslipViewOwn Permission = "payslip.view_own"

	// Tax Filing
	PermissionTaxLiabilityView   Permission = "tax_liability.view"
	PermissionTaxLiabilityManage Permission = "tax_liability.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionTimesheetManageOwn,
		PermissionTimesheetViewAll,
		PermissionTimesheetApprove,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionPayrollView,
		PermissionPayrollRun,
		PermissionPayrollCommit,
		PermissionPayslipViewOwn,
		PermissionTaxLiabilityView,
		PermissionTaxLiabilityManage,
	},
	RoleManager: {
		// Manager reviews timesheets and prepares runs, commit stays with the owner
		PermissionTimesheetManageOwn,
		PermissionTimesheetViewAll,
		PermissionTimesheetApprove,
		PermissionEmployeeViewAll,
		PermissionPayrollView,
		PermissionPayrollRun,
		PermissionPayslipViewOwn,
		PermissionTaxLiabilityView,
	},
	RoleEmployee: {
		PermissionTimesheetManageOwn,
		PermissionPayslipViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
