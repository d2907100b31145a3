package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type TimesheetHandler interface {
	OpenTimesheet(w http.ResponseWriter, r *http.Request)
	ListTimesheets(w http.ResponseWriter, r *http.Request)
	GetTimesheet(w http.ResponseWriter, r *http.Request)
	UpdateEntries(w http.ResponseWriter, r *http.Request)
	SubmitTimesheet(w http.ResponseWriter, r *http.Request)
	ApproveTimesheet(w http.ResponseWriter, r *http.Request)
	RejectTimesheet(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService}
}

func (h *timesheetHandlerImpl) OpenTimesheet(w http.ResponseWriter, r *http.Request) {
	var req timesheet.OpenTimesheetRequest
	if err := validator.DecodeStrict(r.Body, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.OpenTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *timesheetHandlerImpl) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	employeeID, err := queryID(r, "employee_id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter := timesheet.TimesheetFilter{
		EmployeeID: employeeID,
		Status:     queryString(r, "status"),
	}

	var ok bool
	if filter.From, ok = queryDate(r, "from"); !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "from", Message: "from must be in YYYY-MM-DD format"}})
		return
	}
	if filter.To, ok = queryDate(r, "to"); !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "to", Message: "to must be in YYYY-MM-DD format"}})
		return
	}
	filter.Page, filter.Limit = pagination(r)

	results, err := h.timesheetService.ListTimesheets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.NewMeta(results.Page, results.Limit, results.TotalCount))
}

func (h *timesheetHandlerImpl) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.GetTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *timesheetHandlerImpl) UpdateEntries(w http.ResponseWriter, r *http.Request) {
	var req timesheet.UpdateEntriesRequest
	if err := validator.DecodeStrict(r.Body, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = id

	result, err := h.timesheetService.UpdateEntries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entries saved", result)
}

func (h *timesheetHandlerImpl) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.SubmitTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet submitted", result)
}

func (h *timesheetHandlerImpl) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.ApproveTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet approved", result)
}

func (h *timesheetHandlerImpl) RejectTimesheet(w http.ResponseWriter, r *http.Request) {
	var req timesheet.RejectTimesheetRequest
	if err := validator.DecodeStrict(r.Body, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = id

	result, err := h.timesheetService.RejectTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet rejected", result)
}
