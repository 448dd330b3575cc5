package appointment

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"clinicbook/infras/otel"
	"clinicbook/internal/domains/appointment/model"
	"clinicbook/internal/domains/appointment/model/dto"
	"clinicbook/internal/domains/appointment/service"
	"clinicbook/shared/constant"
	gDto "clinicbook/shared/dto"
	"clinicbook/shared/failure"
	"clinicbook/shared/validator"
	"clinicbook/transport/http/response"
)

type Handler struct {
	service service.Appointment
	otel    otel.Otel
}

func New(service service.Appointment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/appointments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.BookAppointment)
		routerGroup.Get("/", handler.GetAppointments)
		routerGroup.Get("/available-slots", handler.GetAvailableSlots)
		routerGroup.Get("/dashboard-stats", handler.GetDashboardStats)
		routerGroup.Get("/{id}", handler.GetAppointmentByID)
		routerGroup.Put("/{id}", handler.RescheduleAppointment)
		routerGroup.Patch("/{id}/status", handler.ChangeAppointmentStatus)
		routerGroup.Delete("/{id}", handler.DeleteAppointment)
	})
}

// BookAppointment creates a new appointment.
// @Summary Book a new appointment
// @Description Book an appointment for a time slot. Returns 422 with the conflicting window when the slot is already taken.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param request body dto.BookAppointmentRequest true "Book Appointment Request"
// @Success 201 {object} response.Data[dto.AppointmentResponse] "Appointment booked successfully"
// @Failure 422 {object} response.Error "Validation failed or time slot conflict"
// @Failure 503 {object} response.Error "Schedule lock is busy"
// @Router /v1/appointments [post]
// @Security BearerAuth
func (handler *Handler) BookAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".BookAppointment")
	defer scope.End()

	companyID, err := companyFromRequest(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req := dto.BookAppointmentRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	// The tenant always comes from the boundary, never from the body.
	req.CompanyID = companyID

	res, err := handler.service.Book(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to book appointment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment booked successfully")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetAppointments retrieves the company's appointments.
// @Summary Get all appointments
// @Description Retrieve the company's appointments with optional filtering and pagination.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (scheduled, confirmed, completed, cancelled, no_show)"
// @Param type query string false "Filter by type (consultation, follow_up, treatment, emergency, other)"
// @Param customer_id query string false "Filter by customer ID"
// @Param date_from query string false "Filter from date (YYYY-MM-DD)"
// @Param date_to query string false "Filter to date (YYYY-MM-DD)"
// @Param search query string false "Search in title"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse] "List of appointments"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments [get]
// @Security BearerAuth
func (handler *Handler) GetAppointments(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointments")
	defer scope.End()

	companyID, err := companyFromRequest(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCompanyID,
				Operator: gDto.FilterOperatorEq,
				Value:    companyID,
				Table:    model.TableName,
			},
		},
	}

	if status := request.URL.Query().Get(model.FieldStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if kind := request.URL.Query().Get(model.FieldType); kind != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldType,
			Operator: gDto.FilterOperatorEq,
			Value:    kind,
			Table:    model.TableName,
		})
	}

	if customerID := request.URL.Query().Get(model.FieldCustomerID); customerID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCustomerID,
			Operator: gDto.FilterOperatorEq,
			Value:    customerID,
			Table:    model.TableName,
		})
	}

	if dateFrom := request.URL.Query().Get("date_from"); dateFrom != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  "date_from",
			Field:    model.FieldAppointmentDate,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    dateFrom,
			Table:    model.TableName,
		})
	}

	if dateTo := request.URL.Query().Get("date_to"); dateTo != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  "date_to",
			Field:    model.FieldAppointmentDate,
			Operator: gDto.FilterOperatorLessEq,
			Value:    dateTo,
			Table:    model.TableName,
		})
	}

	if search := request.URL.Query().Get("search"); search != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldTitle,
			Operator: gDto.FilterOperatorLike,
			Value:    search,
			Table:    model.TableName,
		})
	}

	appointments, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointments")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointments retrieved successfully")

	response.WithJSON(writer, http.StatusOK, appointments)
}

// GetAvailableSlots lists the free slot starts of a day.
// @Summary Get available slots
// @Description List available appointment slot start times (HH:MM) for a day. Advisory only; booking re-checks under the lock.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param date query string true "Day to inspect (YYYY-MM-DD)"
// @Param exclude_appointment_id query string false "Appointment to ignore (when rescheduling)"
// @Success 200 {object} response.Data[dto.AvailableSlotsResponse] "Available slot starts"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/available-slots [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableSlots(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSlots")
	defer scope.End()

	companyID, err := companyFromRequest(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	date := request.URL.Query().Get(constant.RequestParamDate)

	var excludeID int64
	if raw := request.URL.Query().Get(constant.RequestParamExcludeAppointmentID); raw != "" {
		excludeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.WithError(writer, failure.BadRequestFromString("invalid exclude_appointment_id"))

			return
		}
	}

	slots, err := handler.service.AvailableSlots(ctx, companyID, date, excludeID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available slots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, slots)
}

// GetDashboardStats returns the appointment counters for the dashboard.
// @Summary Get dashboard statistics
// @Description Retrieve appointment counters: today, this week, upcoming and completed this month.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Success 200 {object} response.Data[dto.DashboardStatsResponse] "Dashboard statistics"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/dashboard-stats [get]
// @Security BearerAuth
func (handler *Handler) GetDashboardStats(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDashboardStats")
	defer scope.End()

	companyID, err := companyFromRequest(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	stats, err := handler.service.DashboardStats(ctx, companyID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get dashboard stats")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, stats)
}

// GetAppointmentByID retrieves a single appointment.
// @Summary Get appointment by ID
// @Description Retrieve a single appointment scoped to the company.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAppointmentByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointmentByID")
	defer scope.End()

	companyID, id, err := pathIdentifiers(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Get(ctx, companyID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// RescheduleAppointment moves an appointment to a new time window.
// @Summary Reschedule an appointment
// @Description Move an appointment to a new window. The appointment's own current window never conflicts with itself.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param id path string true "Appointment ID"
// @Param request body dto.RescheduleAppointmentRequest true "Reschedule Appointment Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment rescheduled successfully"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error "Validation failed or time slot conflict"
// @Failure 503 {object} response.Error "Schedule lock is busy"
// @Router /v1/appointments/{id} [put]
// @Security BearerAuth
func (handler *Handler) RescheduleAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleAppointment")
	defer scope.End()

	companyID, id, err := pathIdentifiers(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req := dto.RescheduleAppointmentRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	req.CompanyID = companyID

	res, err := handler.service.Reschedule(ctx, companyID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reschedule appointment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment rescheduled successfully")

	response.WithJSON(writer, http.StatusOK, res)
}

// ChangeAppointmentStatus applies a status transition.
// @Summary Change appointment status
// @Description Change the appointment status. Completed and cancelled are terminal. A cancellation reason is appended to the notes.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param id path string true "Appointment ID"
// @Param request body dto.ChangeStatusRequest true "Change Status Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Status changed successfully"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error "Invalid status transition"
// @Router /v1/appointments/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) ChangeAppointmentStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangeAppointmentStatus")
	defer scope.End()

	companyID, id, err := pathIdentifiers(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req := dto.ChangeStatusRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.ChangeStatus(ctx, companyID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change appointment status")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment status changed successfully")

	response.WithJSON(writer, http.StatusOK, res)
}

// DeleteAppointment removes an appointment.
// @Summary Delete an appointment
// @Description Permanently delete an appointment. Prefer cancelling to keep the record.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param company header string true "Company ID"
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Message "Appointment deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAppointment")
	defer scope.End()

	companyID, id, err := pathIdentifiers(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Delete(ctx, companyID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete appointment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment deleted successfully")

	response.WithMessage(writer, http.StatusOK, "Appointment deleted successfully")
}

// companyFromRequest resolves the tenant from the company header, falling back
// to the company_id query parameter. Everything below the handler takes the
// company as an explicit argument.
func companyFromRequest(request *http.Request) (int64, error) {
	raw := request.Header.Get(constant.RequestHeaderCompany)
	if raw == "" {
		raw = request.URL.Query().Get(constant.RequestParamCompanyID)
	}

	if raw == "" {
		return 0, failure.BadRequestFromString("company header is required") //nolint:wrapcheck
	}

	companyID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, failure.BadRequestFromString("invalid company identifier") //nolint:wrapcheck
	}

	return companyID, nil
}

func pathIdentifiers(request *http.Request) (companyID, id int64, err error) {
	companyID, err = companyFromRequest(request)
	if err != nil {
		return 0, 0, err
	}

	id, err = strconv.ParseInt(chi.URLParam(request, constant.RequestParamID), 10, 64)
	if err != nil {
		return 0, 0, failure.BadRequestFromString("invalid appointment id") //nolint:wrapcheck
	}

	return companyID, id, nil
}
