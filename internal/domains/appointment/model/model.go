package model

import (
	"database/sql"
	"time"

	"clinicbook/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID                      = "id"
	FieldCompanyID               = "company_id"
	FieldCustomerID              = "customer_id"
	FieldCreatorID               = "creator_id"
	FieldUniqueHash              = "unique_hash"
	FieldTitle                   = "title"
	FieldDescription             = "description"
	FieldAppointmentDate         = "appointment_date"
	FieldDurationMinutes         = "duration_minutes"
	FieldStatus                  = "status"
	FieldType                    = "type"
	FieldPatientName             = "patient_name"
	FieldPatientPhone            = "patient_phone"
	FieldPatientEmail            = "patient_email"
	FieldChiefComplaint          = "chief_complaint"
	FieldNotes                   = "notes"
	FieldPreparationInstructions = "preparation_instructions"
	FieldSendReminder            = "send_reminder"
	FieldReminderHoursBefore     = "reminder_hours_before"
	FieldReminderSentAt          = "reminder_sent_at"
)

// Status is the closed set of appointment states.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Type classifies the visit.
type Type string

const (
	TypeConsultation Type = "consultation"
	TypeFollowUp     Type = "follow_up"
	TypeTreatment    Type = "treatment"
	TypeEmergency    Type = "emergency"
	TypeOther        Type = "other"
)

var validStatuses = map[Status]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

var validTypes = map[Type]bool{
	TypeConsultation: true,
	TypeFollowUp:     true,
	TypeTreatment:    true,
	TypeEmergency:    true,
	TypeOther:        true,
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s Status) bool {
	return validStatuses[s]
}

// ValidType reports whether t is a member of the type enum.
func ValidType(t Type) bool {
	return validTypes[t]
}

// CanTransition reports whether a status change is accepted. Completed and
// cancelled are terminal; every other state may move to any valid status.
func CanTransition(from, to Status) bool {
	if !validStatuses[from] || !validStatuses[to] {
		return false
	}

	if from == to {
		return true
	}

	switch from {
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return true
	}
}

// Appointment is a time-boxed reservation owned by a single company. The
// [AppointmentDate, AppointmentDate+DurationMinutes) window of two non-cancelled
// appointments in the same company must never overlap.
type Appointment struct {
	ID                      int64          `db:"id"`
	CompanyID               int64          `db:"company_id"`
	CustomerID              int64          `db:"customer_id"`
	CreatorID               sql.NullInt64  `db:"creator_id"`
	UniqueHash              sql.NullString `db:"unique_hash"`
	Title                   string         `db:"title"`
	Description             sql.NullString `db:"description"`
	AppointmentDate         time.Time      `db:"appointment_date"`
	DurationMinutes         int            `db:"duration_minutes"`
	Status                  Status         `db:"status"`
	Type                    Type           `db:"type"`
	PatientName             sql.NullString `db:"patient_name"`
	PatientPhone            sql.NullString `db:"patient_phone"`
	PatientEmail            sql.NullString `db:"patient_email"`
	ChiefComplaint          sql.NullString `db:"chief_complaint"`
	Notes                   sql.NullString `db:"notes"`
	PreparationInstructions sql.NullString `db:"preparation_instructions"`
	SendReminder            bool           `db:"send_reminder"`
	ReminderHoursBefore     int            `db:"reminder_hours_before"`
	ReminderSentAt          sql.NullTime   `db:"reminder_sent_at"`
	model.Metadata
}

// EndTime derives the exclusive end of the reservation window.
func (a *Appointment) EndTime() time.Time {
	return a.AppointmentDate.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps applies the half-open interval test against a proposed window.
// Touching endpoints do not overlap, so back-to-back bookings are allowed.
func (a *Appointment) Overlaps(proposedStart, proposedEnd time.Time) bool {
	return proposedStart.Before(a.EndTime()) && proposedEnd.After(a.AppointmentDate)
}

// IsPastDue reports whether the appointment started in the past without being completed.
func (a *Appointment) IsPastDue(now time.Time) bool {
	return a.AppointmentDate.Before(now) && a.Status != StatusCompleted
}

// CanBeModified is the policy gate checked before reschedules. It is not part
// of overlap enforcement; it just avoids taking locks for rows the caller is
// not allowed to touch anymore.
func (a *Appointment) CanBeModified(now time.Time) bool {
	if a.Status == StatusCompleted || a.Status == StatusCancelled {
		return false
	}

	return a.AppointmentDate.After(now)
}

// StatusBadgeColor maps a status to the color the admin UI renders it with.
func (a *Appointment) StatusBadgeColor() string {
	switch a.Status {
	case StatusScheduled:
		return "blue"
	case StatusConfirmed:
		return "green"
	case StatusCompleted:
		return "gray"
	case StatusCancelled:
		return "red"
	case StatusNoShow:
		return "yellow"
	default:
		return "gray"
	}
}

// DayStart truncates a timestamp to midnight in its own location. The overlap
// lock is scoped to the (company, day) this returns.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
