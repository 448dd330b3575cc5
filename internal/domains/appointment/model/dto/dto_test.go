package dto_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clinicbook/internal/domains/appointment/model"
	"clinicbook/internal/domains/appointment/model/dto"
	"clinicbook/shared/timezone"
)

func TestBookAppointmentRequest_ParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"space separated datetime", "2026-03-10 10:00", false},
		{"rfc3339 datetime", "2026-03-10T10:00:00Z", false},
		{"garbage", "next tuesday", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.BookAppointmentRequest{AppointmentDate: tt.input}

			parsed, err := req.ParseDate()
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, 2026, parsed.Year())
			assert.Equal(t, 10, parsed.Hour())
		})
	}
}

func TestBookAppointmentRequest_ToModel_Defaults(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	req := dto.BookAppointmentRequest{
		CompanyID:       7,
		CustomerID:      11,
		Title:           "Dental checkup",
		AppointmentDate: "2026-03-10 10:00",
	}

	appointment := req.ToModel(start, 30, "42")

	assert.Equal(t, int64(7), appointment.CompanyID)
	assert.Equal(t, int64(11), appointment.CustomerID)
	assert.Equal(t, start, appointment.AppointmentDate)
	assert.Equal(t, 30, appointment.DurationMinutes)
	assert.Equal(t, model.StatusScheduled, appointment.Status)
	assert.Equal(t, model.TypeConsultation, appointment.Type)
	assert.True(t, appointment.SendReminder)
	assert.Equal(t, 24, appointment.ReminderHoursBefore)
	assert.Equal(t, sql.NullInt64{Int64: 42, Valid: true}, appointment.CreatorID)
	assert.Equal(t, "42", appointment.CreatedBy)
	assert.False(t, appointment.UniqueHash.Valid)
}

func TestBookAppointmentRequest_ToModel_Explicit(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	sendReminder := false

	req := dto.BookAppointmentRequest{
		CompanyID:           7,
		CustomerID:          11,
		Title:               "Root canal",
		AppointmentDate:     "2026-03-10 10:00",
		DurationMinutes:     90,
		Type:                string(model.TypeTreatment),
		PatientName:         "Jordan Smith",
		SendReminder:        &sendReminder,
		ReminderHoursBefore: 48,
	}

	appointment := req.ToModel(start, 30, "service-account")

	assert.Equal(t, 90, appointment.DurationMinutes)
	assert.Equal(t, model.TypeTreatment, appointment.Type)
	assert.Equal(t, "Jordan Smith", appointment.PatientName.String)
	assert.False(t, appointment.SendReminder)
	assert.Equal(t, 48, appointment.ReminderHoursBefore)
	assert.False(t, appointment.CreatorID.Valid)
}

func TestRescheduleAppointmentRequest_UpdatedFields(t *testing.T) {
	start := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

	req := dto.RescheduleAppointmentRequest{
		AppointmentDate: "2026-03-11 14:00",
		DurationMinutes: 60,
		Title:           "Follow up visit",
		Type:            string(model.TypeFollowUp),
	}

	fields := req.UpdatedFields(start, "42")

	assert.Equal(t, start, fields[model.FieldAppointmentDate])
	assert.Equal(t, 60, fields[model.FieldDurationMinutes])
	assert.Equal(t, "Follow up visit", fields[model.FieldTitle])
	assert.Equal(t, string(model.TypeFollowUp), fields[model.FieldType])
	assert.Equal(t, "42", fields["modified_by"])
	assert.NotContains(t, fields, model.FieldPatientName)
	assert.NotContains(t, fields, model.FieldCustomerID)
	assert.NotContains(t, fields, model.FieldSendReminder)
}

func TestAppointmentResponse_FromModel(t *testing.T) {
	start := time.Date(2030, 6, 5, 9, 30, 0, 0, timezone.GetLocation())

	appointment := model.Appointment{
		ID:              3,
		CompanyID:       7,
		CustomerID:      11,
		UniqueHash:      sql.NullString{String: "abc-123", Valid: true},
		Title:           "Dental checkup",
		AppointmentDate: start,
		DurationMinutes: 30,
		Status:          model.StatusConfirmed,
		Type:            model.TypeConsultation,
	}

	res := dto.AppointmentResponse{}
	res.FromModel(appointment)

	assert.Equal(t, int64(3), res.ID)
	assert.Equal(t, "abc-123", res.UniqueHash)
	assert.Equal(t, "Jun 05, 2030", res.FormattedAppointmentDate)
	assert.Equal(t, "09:30 AM", res.FormattedAppointmentTime)
	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, "green", res.StatusBadgeColor)
	assert.False(t, res.IsPastDue)
	assert.True(t, res.CanBeModified)
}

func TestAppointmentResponse_FromModel_PastDue(t *testing.T) {
	start := time.Date(2020, 1, 6, 14, 0, 0, 0, timezone.GetLocation())

	appointment := model.Appointment{
		ID:              4,
		AppointmentDate: start,
		DurationMinutes: 30,
		Status:          model.StatusScheduled,
		Type:            model.TypeConsultation,
	}

	res := dto.AppointmentResponse{}
	res.FromModel(appointment)

	assert.True(t, res.IsPastDue)
	assert.False(t, res.CanBeModified)
	assert.Equal(t, "02:00 PM", res.FormattedAppointmentTime)
}

func TestGetAppointmentsResponse_FromModels(t *testing.T) {
	models := []model.Appointment{
		{ID: 1, Title: "First", DurationMinutes: 30, Status: model.StatusScheduled, Type: model.TypeConsultation},
		{ID: 2, Title: "Second", DurationMinutes: 30, Status: model.StatusScheduled, Type: model.TypeConsultation},
	}

	res := dto.GetAppointmentsResponse{}
	res.FromModels(models, 12, 10)

	assert.Len(t, res.Appointments, 2)
	assert.Equal(t, 12, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Equal(t, "First", res.Appointments[0].Title)
}

func TestNewAppointmentEvent(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	appointment := model.Appointment{
		ID:              5,
		CompanyID:       7,
		CustomerID:      11,
		AppointmentDate: start,
		DurationMinutes: 30,
		Status:          model.StatusScheduled,
	}

	event := dto.NewAppointmentEvent("appointment.booked", appointment)

	assert.Equal(t, "appointment.booked", event.Event)
	assert.Equal(t, int64(5), event.AppointmentID)
	assert.Equal(t, int64(7), event.CompanyID)
	assert.Equal(t, 30, event.DurationMinutes)
	assert.Equal(t, "scheduled", event.Status)
}
