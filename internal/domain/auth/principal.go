package auth

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

// Principal is the authenticated actor of a request and the tenant it acts in.
type Principal struct {
	UserID     string
	Email      string
	CompanyID  string
	EmployeeID *string
	Role       user.Role
}

func (p Principal) Can(permission user.Permission) bool {
	return user.HasPermission(p.Role, permission)
}

// IsEmployee reports whether the principal is linked to the given employee record.
func (p Principal) IsEmployee(employeeID string) bool {
	return p.EmployeeID != nil && *p.EmployeeID == employeeID
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal placed by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok {
		return Principal{}, ErrMissingPrincipal
	}
	if p.CompanyID == "" {
		return Principal{}, ErrCompanyRequired
	}
	return p, nil
}

// PrincipalFromClaims builds a principal from verified access token claims.
func PrincipalFromClaims(claims map[string]interface{}) (Principal, error) {
	userID, _ := claims["user_id"].(string)
	companyID, _ := claims["company_id"].(string)
	roleStr, _ := claims["role"].(string)
	if userID == "" {
		return Principal{}, ErrInvalidToken
	}
	if companyID == "" {
		return Principal{}, ErrCompanyRequired
	}

	role := user.Role(roleStr)
	if !role.IsValid() {
		return Principal{}, ErrInvalidToken
	}

	p := Principal{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	p.Email, _ = claims["email"].(string)
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		p.EmployeeID = &employeeID
	}
	return p, nil
}
