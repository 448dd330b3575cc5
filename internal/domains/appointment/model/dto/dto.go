package dto

import (
	"database/sql"
	"strconv"
	"time"

	"clinicbook/internal/domains/appointment/model"
	"clinicbook/shared"
	"clinicbook/shared/constant"
	gDto "clinicbook/shared/dto"
	gModel "clinicbook/shared/model"
	"clinicbook/shared/timezone"
)

// BookAppointmentRequest is the payload for creating an appointment. CompanyID
// is filled in by the handler from the tenant header and threaded explicitly
// from there on.
type BookAppointmentRequest struct {
	CompanyID               int64  `json:"-"`
	CustomerID              int64  `json:"customer_id"              validate:"required"`
	Title                   string `json:"title"                    validate:"required,max=255"`
	Description             string `json:"description"              validate:"omitempty"`
	AppointmentDate         string `json:"appointment_date"         validate:"required,datetime_flexible"`
	DurationMinutes         int    `json:"duration_minutes"         validate:"omitempty,gt=0"`
	Type                    string `json:"type"                     validate:"omitempty,oneof=consultation follow_up treatment emergency other"`
	PatientName             string `json:"patient_name"             validate:"omitempty,max=255"`
	PatientPhone            string `json:"patient_phone"            validate:"omitempty,max=30"`
	PatientEmail            string `json:"patient_email"            validate:"omitempty,email,max=255"`
	ChiefComplaint          string `json:"chief_complaint"          validate:"omitempty"`
	Notes                   string `json:"notes"                    validate:"omitempty"`
	PreparationInstructions string `json:"preparation_instructions" validate:"omitempty"`
	SendReminder            *bool  `json:"send_reminder"            validate:"omitempty"`
	ReminderHoursBefore     int    `json:"reminder_hours_before"    validate:"omitempty,gt=0"`
}

// ParseDate resolves the requested start time in the application timezone.
func (r *BookAppointmentRequest) ParseDate() (time.Time, error) {
	if t, err := timezone.Parse(constant.DateTimeFormat, r.AppointmentDate); err == nil {
		return t, nil
	}

	return timezone.Parse(constant.DateFormat, r.AppointmentDate)
}

// ToModel builds the persistence model, applying the configured defaults for
// duration, type and reminder settings.
func (r *BookAppointmentRequest) ToModel(start time.Time, defaultDuration int, creator string) model.Appointment {
	duration := r.DurationMinutes
	if duration <= 0 {
		duration = defaultDuration
	}

	kind := model.Type(r.Type)
	if r.Type == constant.Empty {
		kind = model.TypeConsultation
	}

	sendReminder := true
	if r.SendReminder != nil {
		sendReminder = *r.SendReminder
	}

	reminderHours := r.ReminderHoursBefore
	if reminderHours <= 0 {
		reminderHours = 24
	}

	return model.Appointment{
		CompanyID:               r.CompanyID,
		CustomerID:              r.CustomerID,
		CreatorID:               nullInt64FromString(creator),
		Title:                   r.Title,
		Description:             nullString(r.Description),
		AppointmentDate:         start,
		DurationMinutes:         duration,
		Status:                  model.StatusScheduled,
		Type:                    kind,
		PatientName:             nullString(r.PatientName),
		PatientPhone:            nullString(r.PatientPhone),
		PatientEmail:            nullString(r.PatientEmail),
		ChiefComplaint:          nullString(r.ChiefComplaint),
		Notes:                   nullString(r.Notes),
		PreparationInstructions: nullString(r.PreparationInstructions),
		SendReminder:            sendReminder,
		ReminderHoursBefore:     reminderHours,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  creator,
			ModifiedBy: creator,
		},
	}
}

// RescheduleAppointmentRequest is the payload for PUT updates. The overlap
// guard re-runs with the appointment itself excluded from the lock set.
type RescheduleAppointmentRequest struct {
	CompanyID               int64  `json:"-"`
	CustomerID              int64  `json:"customer_id"              validate:"omitempty"`
	Title                   string `json:"title"                    validate:"omitempty,max=255"`
	Description             string `json:"description"              validate:"omitempty"`
	AppointmentDate         string `json:"appointment_date"         validate:"required,datetime_flexible"`
	DurationMinutes         int    `json:"duration_minutes"         validate:"required,gt=0"`
	Type                    string `json:"type"                     validate:"omitempty,oneof=consultation follow_up treatment emergency other"`
	PatientName             string `json:"patient_name"             validate:"omitempty,max=255"`
	PatientPhone            string `json:"patient_phone"            validate:"omitempty,max=30"`
	PatientEmail            string `json:"patient_email"            validate:"omitempty,email,max=255"`
	ChiefComplaint          string `json:"chief_complaint"          validate:"omitempty"`
	Notes                   string `json:"notes"                    validate:"omitempty"`
	PreparationInstructions string `json:"preparation_instructions" validate:"omitempty"`
	SendReminder            *bool  `json:"send_reminder"            validate:"omitempty"`
	ReminderHoursBefore     int    `json:"reminder_hours_before"    validate:"omitempty,gt=0"`
}

// ParseDate resolves the requested start time in the application timezone.
func (r *RescheduleAppointmentRequest) ParseDate() (time.Time, error) {
	if t, err := timezone.Parse(constant.DateTimeFormat, r.AppointmentDate); err == nil {
		return t, nil
	}

	return timezone.Parse(constant.DateFormat, r.AppointmentDate)
}

// UpdatedFields flattens the request into the column map applied on success.
func (r *RescheduleAppointmentRequest) UpdatedFields(start time.Time, modifier string) map[string]any {
	fields := map[string]any{
		model.FieldAppointmentDate: start,
		model.FieldDurationMinutes: r.DurationMinutes,
		constant.FieldModifiedAt:   timezone.Now(),
		constant.FieldModifiedBy:   modifier,
	}

	if r.CustomerID != 0 {
		fields[model.FieldCustomerID] = r.CustomerID
	}

	if r.Title != constant.Empty {
		fields[model.FieldTitle] = r.Title
	}

	if r.Description != constant.Empty {
		fields[model.FieldDescription] = r.Description
	}

	if r.Type != constant.Empty {
		fields[model.FieldType] = r.Type
	}

	if r.PatientName != constant.Empty {
		fields[model.FieldPatientName] = r.PatientName
	}

	if r.PatientPhone != constant.Empty {
		fields[model.FieldPatientPhone] = r.PatientPhone
	}

	if r.PatientEmail != constant.Empty {
		fields[model.FieldPatientEmail] = r.PatientEmail
	}

	if r.ChiefComplaint != constant.Empty {
		fields[model.FieldChiefComplaint] = r.ChiefComplaint
	}

	if r.Notes != constant.Empty {
		fields[model.FieldNotes] = r.Notes
	}

	if r.PreparationInstructions != constant.Empty {
		fields[model.FieldPreparationInstructions] = r.PreparationInstructions
	}

	if r.SendReminder != nil {
		fields[model.FieldSendReminder] = *r.SendReminder
	}

	if r.ReminderHoursBefore > 0 {
		fields[model.FieldReminderHoursBefore] = r.ReminderHoursBefore
	}

	return fields
}

// ChangeStatusRequest is the payload for PATCH /{id}/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled no_show"`
	Reason string `json:"reason" validate:"omitempty"`
}

type AppointmentResponse struct {
	ID                       int64  `json:"id"`
	CompanyID                int64  `json:"company_id"`
	CustomerID               int64  `json:"customer_id"`
	CreatorID                *int64 `json:"creator_id"`
	UniqueHash               string `json:"unique_hash"`
	Title                    string `json:"title"`
	Description              string `json:"description,omitempty"`
	AppointmentDate          string `json:"appointment_date"`
	FormattedAppointmentDate string `json:"formatted_appointment_date"`
	FormattedAppointmentTime string `json:"formatted_appointment_time"`
	DurationMinutes          int    `json:"duration_minutes"`
	EndTime                  string `json:"end_time"`
	Status                   string `json:"status"`
	StatusBadgeColor         string `json:"status_badge_color"`
	Type                     string `json:"type"`
	PatientName              string `json:"patient_name,omitempty"`
	PatientPhone             string `json:"patient_phone,omitempty"`
	PatientEmail             string `json:"patient_email,omitempty"`
	ChiefComplaint           string `json:"chief_complaint,omitempty"`
	Notes                    string `json:"notes,omitempty"`
	PreparationInstructions  string `json:"preparation_instructions,omitempty"`
	SendReminder             bool   `json:"send_reminder"`
	ReminderHoursBefore      int    `json:"reminder_hours_before"`
	ReminderSentAt           string `json:"reminder_sent_at,omitempty"`
	IsPastDue                bool   `json:"is_past_due"`
	CanBeModified            bool   `json:"can_be_modified"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(mod model.Appointment) {
	now := timezone.Now()

	r.ID = mod.ID
	r.CompanyID = mod.CompanyID
	r.CustomerID = mod.CustomerID
	r.CreatorID = nullInt64Ptr(mod.CreatorID)
	r.UniqueHash = mod.UniqueHash.String
	r.Title = mod.Title
	r.Description = mod.Description.String
	r.AppointmentDate = timezone.Format(mod.AppointmentDate, constant.DateFormat)
	r.FormattedAppointmentDate = timezone.Format(mod.AppointmentDate, constant.LongDateFormat)
	r.FormattedAppointmentTime = timezone.Format(mod.AppointmentDate, constant.ClockFormat12h)
	r.DurationMinutes = mod.DurationMinutes
	r.EndTime = timezone.Format(mod.EndTime(), constant.DateFormat)
	r.Status = string(mod.Status)
	r.StatusBadgeColor = mod.StatusBadgeColor()
	r.Type = string(mod.Type)
	r.PatientName = mod.PatientName.String
	r.PatientPhone = mod.PatientPhone.String
	r.PatientEmail = mod.PatientEmail.String
	r.ChiefComplaint = mod.ChiefComplaint.String
	r.Notes = mod.Notes.String
	r.PreparationInstructions = mod.PreparationInstructions.String
	r.SendReminder = mod.SendReminder
	r.ReminderHoursBefore = mod.ReminderHoursBefore

	if mod.ReminderSentAt.Valid {
		r.ReminderSentAt = timezone.Format(mod.ReminderSentAt.Time, constant.DateFormat)
	}

	r.IsPastDue = mod.IsPastDue(now)
	r.CanBeModified = mod.CanBeModified(now)
	r.Metadata.FromModel(mod.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}

// AvailableSlotsResponse lists unblocked slot starts as HH:MM strings,
// in grid order.
type AvailableSlotsResponse struct {
	Slots []string `json:"slots"`
}

// DashboardStatsResponse carries the admin dashboard counters.
type DashboardStatsResponse struct {
	Today              int `json:"today"`
	ThisWeek           int `json:"this_week"`
	Upcoming           int `json:"upcoming"`
	CompletedThisMonth int `json:"completed_this_month"`
}

// AppointmentEvent is the lifecycle message published to Kafka for external
// consumers (notification service, audit trail).
type AppointmentEvent struct {
	Event           string `json:"event"`
	AppointmentID   int64  `json:"appointment_id"`
	CompanyID       int64  `json:"company_id"`
	CustomerID      int64  `json:"customer_id"`
	AppointmentDate string `json:"appointment_date"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

func NewAppointmentEvent(event string, mod model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		Event:           event,
		AppointmentID:   mod.ID,
		CompanyID:       mod.CompanyID,
		CustomerID:      mod.CustomerID,
		AppointmentDate: timezone.Format(mod.AppointmentDate, constant.DateFormat),
		DurationMinutes: mod.DurationMinutes,
		Status:          string(mod.Status),
	}
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != constant.Empty}
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}

	v := value.Int64
	return &v
}

// nullInt64FromString maps the authenticated subject to a creator reference.
// The auth service issues numeric subjects; anything else (service accounts,
// missing identity) leaves the creator unset.
func nullInt64FromString(value string) sql.NullInt64 {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: id, Valid: true}
}
