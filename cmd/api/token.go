package main

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("user-id", "", "User ID placed in the token (required)")
	tokenCmd.Flags().String("company-id", "", "Company the token acts in (required)")
	tokenCmd.Flags().String("role", string(user.RoleOwner), "Role: owner, manager or employee")
	tokenCmd.Flags().String("employee-id", "", "Employee record linked to the user")
	tokenCmd.Flags().String("email", "", "Email claim")
	_ = tokenCmd.MarkFlagRequired("user-id")
	_ = tokenCmd.MarkFlagRequired("company-id")
}

// tokenCmd mints access tokens for operators and local testing; login is handled upstream.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token",
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetString("user-id")
	companyID, _ := cmd.Flags().GetString("company-id")
	roleStr, _ := cmd.Flags().GetString("role")
	employeeID, _ := cmd.Flags().GetString("employee-id")
	email, _ := cmd.Flags().GetString("email")

	role := user.Role(roleStr)
	if !role.IsValid() {
		return fmt.Errorf("%w: %s", user.ErrInvalidRole, roleStr)
	}

	p := auth.Principal{UserID: userID, Email: email, CompanyID: companyID, Role: role}
	if employeeID != "" {
		p.EmployeeID = &employeeID
	}

	svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}
	token, expiresAt, err := svc.GenerateAccessToken(p)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %d\n", expiresAt)
	return nil
}
