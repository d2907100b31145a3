package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTripsPrincipal(t *testing.T) {
	svc, err := NewJWTService("test-secret", "15m")
	require.NoError(t, err)

	employeeID := "emp-1"
	want := auth.Principal{
		UserID:     "user-1",
		Email:      "dana@example.com",
		CompanyID:  "company-1",
		EmployeeID: &employeeID,
		Role:       user.RoleManager,
	}

	token, expiresAt, err := svc.GenerateAccessToken(want)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims["type"])

	got, err := auth.PrincipalFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon")
	assert.Error(t, err)
}
