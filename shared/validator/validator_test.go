package validator_test

import (
	"strings"
	"testing"

	"clinicbook/shared/validator"
)

type bookingPayload struct {
	Title           string `json:"title"            validate:"required,max=255"`
	AppointmentDate string `json:"appointment_date" validate:"required,datetime_flexible"`
	Status          string `json:"status"           validate:"omitempty,oneof=scheduled confirmed completed cancelled no_show"`
}

type dayPayload struct {
	Date string `json:"date" validate:"required,dateonly"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "valid payload with datetime",
			body:    `{"title":"Checkup","appointment_date":"2026-03-10 10:00"}`,
			wantErr: false,
		},
		{
			name:    "valid payload with RFC3339 datetime",
			body:    `{"title":"Checkup","appointment_date":"2026-03-10T10:00:00Z"}`,
			wantErr: false,
		},
		{
			name:    "missing required title",
			body:    `{"appointment_date":"2026-03-10 10:00"}`,
			wantErr: true,
		},
		{
			name:    "malformed datetime",
			body:    `{"title":"Checkup","appointment_date":"tomorrow"}`,
			wantErr: true,
		},
		{
			name:    "status outside enum",
			body:    `{"title":"Checkup","appointment_date":"2026-03-10 10:00","status":"pending"}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			body:    `{"title":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload bookingPayload

			err := validator.Validate(strings.NewReader(tt.body), &payload)

			if tt.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateStruct_DateOnly(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{
			name:    "valid day",
			date:    "2026-03-10",
			wantErr: false,
		},
		{
			name:    "day with time rejected",
			date:    "2026-03-10 10:00",
			wantErr: true,
		},
		{
			name:    "malformed day",
			date:    "10/03/2026",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := dayPayload{Date: tt.date}

			err := validator.ValidateStruct(&payload)

			if tt.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	if err := validator.ValidateVar("scheduled", "oneof=scheduled confirmed"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := validator.ValidateVar("pending", "oneof=scheduled confirmed"); err == nil {
		t.Error("expected an error, got nil")
	}
}
