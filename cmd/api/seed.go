package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("company-id", "", "Company UUID to seed (required)")
	seedCmd.Flags().String("week", "", "Week starting date for demo timesheets, YYYY-MM-DD (defaults to last week)")
	_ = seedCmd.MarkFlagRequired("company-id")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo roster with approved timesheets",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	companyID, _ := cmd.Flags().GetString("company-id")
	weekStr, _ := cmd.Flags().GetString("week")

	week, err := demoWeek(weekStr, cfg.Payroll.WeekStart, time.Now().UTC())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	ids := fixtures.NewSeededDataIDs()

	err = postgresql.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		for _, e := range fixtures.GetDemoEmployees(companyID, week.AddDate(-1, 0, 0)) {
			emp, err := employeeRepo.Create(ctx, e)
			if err != nil {
				return fmt.Errorf("failed to seed employee %s: %w", e.EmployeeCode, err)
			}
			ids.EmployeeIDs[emp.EmployeeCode] = emp.ID

			ts, ok := fixtures.GetDemoTimesheet(emp, week)
			if !ok {
				continue
			}
			created, err := timesheetRepo.Create(ctx, ts)
			if err != nil {
				return fmt.Errorf("failed to seed timesheet for %s: %w", emp.EmployeeCode, err)
			}

			now := time.Now().UTC()
			approver := "seed"
			created.Status = timesheet.StatusApproved
			created.SubmittedAt = &now
			created.ApprovedAt = &now
			created.ApprovedBy = &approver
			if _, err := timesheetRepo.Transition(ctx, created, []timesheet.Status{timesheet.StatusDraft}); err != nil {
				return fmt.Errorf("failed to approve timesheet for %s: %w", emp.EmployeeCode, err)
			}
			ids.TimesheetIDs[emp.EmployeeCode] = created.ID
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("demo data seeded",
		"company_id", companyID,
		"week_starting", week.Format("2006-01-02"),
		"employees", len(ids.EmployeeIDs),
		"timesheets", len(ids.TimesheetIDs),
	)
	return nil
}

// demoWeek parses s, or returns the start of the week before now.
func demoWeek(s string, weekStart time.Weekday, now time.Time) (time.Time, error) {
	if s != "" {
		week, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --week: %w", err)
		}
		if week.Weekday() != weekStart {
			return time.Time{}, fmt.Errorf("--week must fall on a %s", weekStart)
		}
		return week, nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	return today.AddDate(0, 0, -offset-7), nil
}
