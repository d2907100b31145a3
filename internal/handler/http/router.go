package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AllowedOrigins []string
	// FilesDir is served under /api/v1/files to payroll viewers. Empty disables the route.
	FilesDir string
}

func NewRouter(
	JWTService jwt.Service,
	logger *slog.Logger,
	limiter *middleware.UserRateLimiter,
	opts RouterOptions,
	employeeHandler EmployeeHandler,
	timesheetHandler TimesheetHandler,
	payrollHandler PayrollHandler,
	taxLiabilityHandler TaxLiabilityHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionEmployeeViewAll)).Get("/", employeeHandler.ListEmployees)
				r.Get("/{id}", employeeHandler.GetEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", employeeHandler.CreateEmployee)
					r.Put("/{id}", employeeHandler.UpdateEmployee)
					r.Delete("/{id}", employeeHandler.DeactivateEmployee)
				})
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionTimesheetManageOwn))
				r.Post("/", timesheetHandler.OpenTimesheet)
				r.Get("/", timesheetHandler.ListTimesheets)
				r.Get("/{id}", timesheetHandler.GetTimesheet)
				r.Put("/{id}/entries", timesheetHandler.UpdateEntries)
				r.Post("/{id}/submit", timesheetHandler.SubmitTimesheet)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimesheetApprove))
					r.Post("/{id}/approve", timesheetHandler.ApproveTimesheet)
					r.Post("/{id}/reject", timesheetHandler.RejectTimesheet)
				})
			})

			r.Route("/payroll/runs", func(r chi.Router) {
				r.Get("/{id}/payslips/{employeeID}", payrollHandler.GetPayslip)
				r.Get("/{id}/payslips/{employeeID}/pdf", payrollHandler.GetPayslipPDF)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollView))
					r.Get("/", payrollHandler.ListRuns)
					r.Get("/{id}", payrollHandler.GetRun)
				})

				// Run mutations are rate limited per user
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollRun))
					if limiter != nil {
						r.Use(limiter.Middleware)
					}
					r.Post("/", payrollHandler.CreateRun)
					r.Post("/{id}/calculate", payrollHandler.CalculateRun)
					r.Post("/{id}/cancel", payrollHandler.CancelRun)
					r.With(middleware.RequirePermission(user.PermissionPayrollCommit)).Post("/{id}/commit", payrollHandler.CommitRun)
				})
			})

			r.Get("/payslips", payrollHandler.ListPayslips)

			r.Route("/tax-liabilities", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionTaxLiabilityView)).Get("/", taxLiabilityHandler.GetLiabilities)
				r.With(middleware.RequirePermission(user.PermissionTaxLiabilityManage)).Post("/payments", taxLiabilityHandler.RecordPayment)
			})

			if opts.FilesDir != "" {
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).
					Handle("/files/*", http.StripPrefix("/api/v1/files/", http.FileServer(http.Dir(opts.FilesDir))))
			}
		})
	})
	return r
}
