package session

// Role is the backend's role vocabulary. The client only gates which
// surfaces it offers; the backend remains the authority on permissions.
type Role string

const (
	// Administration
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
	RoleOfficeAdmin Role = "OFFICE_ADMIN"

	// HR
	RoleHRExec         Role = "HR_EXEC"
	RoleHRManager      Role = "HR_MANAGER"
	RoleRecruiter      Role = "RECRUITER"
	RolePayrollOfficer Role = "PAYROLL_OFFICER"

	// Management
	RoleManager        Role = "MANAGER"
	RoleTeamLead       Role = "TEAM_LEAD"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleDeptHead       Role = "DEPT_HEAD"

	// Engineering
	RoleSoftwareEngineer Role = "SOFTWARE_ENGINEER"
	RoleBackendDev       Role = "BACKEND_DEV"
	RoleFrontendDev      Role = "FRONTEND_DEV"
	RoleDevOps           Role = "DEVOPS"
	RoleQAEngineer       Role = "QA_ENGINEER"

	// Finance
	RoleAccountant     Role = "ACCOUNTANT"
	RoleFinanceManager Role = "FINANCE_MANAGER"

	// Operations
	RoleOperationsExec    Role = "OPERATIONS_EXEC"
	RoleOperationsManager Role = "OPERATIONS_MANAGER"

	// Sales
	RoleSalesExec    Role = "SALES_EXEC"
	RoleSalesManager Role = "SALES_MANAGER"

	// Marketing
	RoleMarketingExec    Role = "MARKETING_EXEC"
	RoleMarketingManager Role = "MARKETING_MANAGER"

	// Customer support
	RoleSupportExec    Role = "SUPPORT_EXEC"
	RoleSupportManager Role = "SUPPORT_MANAGER"
)

var hrRoles = map[Role]bool{
	RoleHRExec:         true,
	RoleHRManager:      true,
	RoleRecruiter:      true,
	RolePayrollOfficer: true,
}

var managementRoles = map[Role]bool{
	RoleManager:        true,
	RoleTeamLead:       true,
	RoleProjectManager: true,
	RoleDeptHead:       true,
}

var financeRoles = map[Role]bool{
	RoleAccountant:     true,
	RoleFinanceManager: true,
	RolePayrollOfficer: true,
}

// IsAdmin reports whether the role has administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleSystemAdmin || r == RoleOfficeAdmin
}

// IsHR reports whether the role belongs to the HR group.
func (r Role) IsHR() bool {
	return hrRoles[r]
}

// IsManagement reports whether the role belongs to the management group.
func (r Role) IsManagement() bool {
	return managementRoles[r]
}

// IsFinance reports whether the role belongs to the finance group.
func (r Role) IsFinance() bool {
	return financeRoles[r]
}

// CanViewAllAttendance mirrors the backend's privileged-role list for the
// attendance surface: admins, HR and management see everyone, others only
// their own records.
func (r Role) CanViewAllAttendance() bool {
	return r.IsAdmin() || r == RoleHRManager || r == RoleHRExec || r.IsManagement()
}
