package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"clinicbook/config"
	kafkaMocks "clinicbook/infras/kafka/mocks"
	otelMocks "clinicbook/infras/otel/mocks"
	appointmentMocks "clinicbook/internal/domains/appointment/mocks"
	"clinicbook/internal/domains/appointment/model"
	"clinicbook/internal/domains/appointment/model/dto"
	"clinicbook/internal/domains/appointment/repository"
	"clinicbook/internal/domains/appointment/service"
	cacheMocks "clinicbook/shared/cache/mocks"
	"clinicbook/shared/constant"
	gDto "clinicbook/shared/dto"
	"clinicbook/shared/failure"
	"clinicbook/shared/timezone"
)

const (
	testCompanyID = int64(7)
	testUserID    = "42"
)

var errCacheMiss = errors.New("cache miss")

type fixture struct {
	repo    *appointmentMocks.MockAppointment
	tx      *appointmentMocks.MockTx
	cache   *cacheMocks.MockRedisCache
	kafka   *kafkaMocks.MockClient
	cfg     *config.Config
	service service.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.App.Booking.BusinessHoursStart = 9
	cfg.App.Booking.BusinessHoursEnd = 17
	cfg.App.Booking.SlotMinutes = 30
	cfg.App.Booking.DefaultDurationMins = 30
	cfg.App.Booking.LockTimeoutSeconds = 5
	cfg.Kafka.Topics.AppointmentEvents = "appointment.events"
	cfg.Kafka.Topics.ReminderDue = "appointment.reminder_due"
	cfg.Reminder.BatchLimit = 100

	f := &fixture{
		repo:  appointmentMocks.NewMockAppointment(ctrl),
		tx:    appointmentMocks.NewMockTx(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
		kafka: kafkaMocks.NewMockClient(ctrl),
		cfg:   cfg,
	}

	// Cache writes, invalidations and event publishing run detached from the
	// request; their timing is not part of the behavior under test.
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.kafka.EXPECT().SendMessages(gomock.Any(), "appointment.events", gomock.Any()).Return(nil).AnyTimes()

	f.service = service.New(f.repo, cfg, f.cache, f.kafka, otelMocks.NewOtel())

	return f
}

func (f *fixture) expectCacheMiss() {
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
}

func testContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, testUserID)
}

func existingAppointment(id int64, start time.Time, durationMinutes int, status model.Status) model.Appointment {
	return model.Appointment{
		ID:              id,
		CompanyID:       testCompanyID,
		CustomerID:      11,
		Title:           "Existing appointment",
		AppointmentDate: start,
		DurationMinutes: durationMinutes,
		Status:          status,
	}
}

func bookRequest(date string) dto.BookAppointmentRequest {
	return dto.BookAppointmentRequest{
		CompanyID:       testCompanyID,
		CustomerID:      11,
		Title:           "Dental checkup",
		AppointmentDate: date,
	}
}

func TestAppointmentService_Book(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, timezone.GetLocation())
	start := day.Add(10 * time.Hour)

	t.Run("books a free slot and assigns the token", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().
			LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(0)).
			Return([]model.Appointment{}, nil)
		f.repo.EXPECT().CreateTx(gomock.Any(), f.tx, gomock.Any()).Return(int64(99), nil)
		f.repo.EXPECT().HashExistsTx(gomock.Any(), f.tx, gomock.Any()).Return(false, nil)
		f.repo.EXPECT().AssignUniqueHashTx(gomock.Any(), f.tx, int64(99), gomock.Any()).Return(nil)
		f.tx.EXPECT().Commit().Return(nil)

		res, err := f.service.Book(testContext(), bookRequest("2026-03-10 10:00"))

		assert.NoError(t, err)
		assert.Equal(t, int64(99), res.ID)
		assert.NotEmpty(t, res.UniqueHash)
		assert.Equal(t, string(model.StatusScheduled), res.Status)
	})

	t.Run("allows a slot adjacent to an existing appointment", func(t *testing.T) {
		f := newFixture(t)

		// 09:30-10:00 already booked; the new 10:00 slot touches but does not overlap.
		locked := []model.Appointment{existingAppointment(1, start.Add(-30*time.Minute), 30, model.StatusScheduled)}

		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(0)).Return(locked, nil)
		f.repo.EXPECT().CreateTx(gomock.Any(), f.tx, gomock.Any()).Return(int64(100), nil)
		f.repo.EXPECT().HashExistsTx(gomock.Any(), f.tx, gomock.Any()).Return(false, nil)
		f.repo.EXPECT().AssignUniqueHashTx(gomock.Any(), f.tx, int64(100), gomock.Any()).Return(nil)
		f.tx.EXPECT().Commit().Return(nil)

		_, err := f.service.Book(testContext(), bookRequest("2026-03-10 10:00"))

		assert.NoError(t, err)
	})

	t.Run("rejects an overlapping slot with the winner's window", func(t *testing.T) {
		f := newFixture(t)

		locked := []model.Appointment{existingAppointment(1, start, 30, model.StatusScheduled)}

		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(0)).Return(locked, nil)
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.service.Book(testContext(), bookRequest("2026-03-10 10:15"))

		assert.Error(t, err)
		assert.True(t, failure.IsOverlap(err))

		var fail *failure.Failure
		assert.ErrorAs(t, err, &fail)
		assert.Equal(t, http.StatusUnprocessableEntity, fail.Code)
		assert.Equal(t, "This time slot is no longer available. Another appointment was booked for this time. Please select a different time.", fail.Message)
		assert.Equal(t, "10:00 AM", fail.Conflict.Start)
		assert.Equal(t, "10:30 AM", fail.Conflict.End)
	})

	t.Run("maps lock timeout to busy", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().
			LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(0)).
			Return(nil, repository.ErrLockTimeout)
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.service.Book(testContext(), bookRequest("2026-03-10 10:00"))

		assert.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
	})

	t.Run("rejects an unparseable date without opening a transaction", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Book(testContext(), bookRequest("next tuesday"))

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("retries token generation on collision", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(0)).Return(nil, nil)
		f.repo.EXPECT().CreateTx(gomock.Any(), f.tx, gomock.Any()).Return(int64(101), nil)

		gomock.InOrder(
			f.repo.EXPECT().HashExistsTx(gomock.Any(), f.tx, gomock.Any()).Return(true, nil),
			f.repo.EXPECT().HashExistsTx(gomock.Any(), f.tx, gomock.Any()).Return(false, nil),
			f.repo.EXPECT().AssignUniqueHashTx(gomock.Any(), f.tx, int64(101), gomock.Any()).Return(repository.ErrHashCollision),
			f.repo.EXPECT().HashExistsTx(gomock.Any(), f.tx, gomock.Any()).Return(false, nil),
			f.repo.EXPECT().AssignUniqueHashTx(gomock.Any(), f.tx, int64(101), gomock.Any()).Return(nil),
		)

		f.tx.EXPECT().Commit().Return(nil)

		res, err := f.service.Book(testContext(), bookRequest("2026-03-10 10:00"))

		assert.NoError(t, err)
		assert.NotEmpty(t, res.UniqueHash)
	})
}

func TestAppointmentService_Reschedule(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, timezone.GetLocation())
	current := existingAppointment(5, time.Date(2030, 3, 9, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled)

	req := dto.RescheduleAppointmentRequest{
		CompanyID:       testCompanyID,
		AppointmentDate: "2026-03-10 11:00",
		DurationMinutes: 30,
	}

	t.Run("excludes itself from the lock set", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		updated := current
		updated.AppointmentDate = day.Add(11 * time.Hour)

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil),
			f.repo.EXPECT().
				LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(5)).
				Return([]model.Appointment{}, nil),
			f.repo.EXPECT().UpdateTx(gomock.Any(), f.tx, gomock.Any(), int64(5)).Return(nil),
			f.tx.EXPECT().Commit().Return(nil),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil),
		)

		res, err := f.service.Reschedule(testContext(), testCompanyID, 5, req)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), res.ID)
	})

	t.Run("rejects an overlapping target window", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		blocker := existingAppointment(6, day.Add(11*time.Hour), 30, model.StatusConfirmed)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.repo.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().
			LockDay(gomock.Any(), f.tx, testCompanyID, day, int64(5)).
			Return([]model.Appointment{blocker}, nil)
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.service.Reschedule(testContext(), testCompanyID, 5, req)

		assert.True(t, failure.IsOverlap(err))

		var fail *failure.Failure
		assert.ErrorAs(t, err, &fail)
		assert.Equal(t, "This time slot is no longer available. Another appointment exists at this time. Please select a different time.", fail.Message)
		assert.Equal(t, "11:00 AM", fail.Conflict.Start)
	})

	t.Run("rejects rescheduling an appointment that already started", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		started := current
		started.AppointmentDate = time.Date(2020, 3, 9, 10, 0, 0, 0, time.UTC)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(started, nil)

		_, err := f.service.Reschedule(testContext(), testCompanyID, 5, req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("rejects rescheduling a cancelled appointment", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		cancelled := current
		cancelled.Status = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)

		_, err := f.service.Reschedule(testContext(), testCompanyID, 5, req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)

		_, err := f.service.Reschedule(testContext(), testCompanyID, 999, req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestAppointmentService_ChangeStatus(t *testing.T) {
	current := existingAppointment(5, time.Date(2030, 3, 9, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled)

	t.Run("applies a valid transition", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusConfirmed, fields[model.FieldStatus])
				assert.NotContains(t, fields, model.FieldNotes)

				return nil
			})

		res, err := f.service.ChangeStatus(testContext(), testCompanyID, 5, dto.ChangeStatusRequest{Status: "confirmed"})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusConfirmed), res.Status)
	})

	t.Run("appends the cancellation reason to the notes", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		withNotes := current
		withNotes.Notes.String = "Bring previous x-rays"
		withNotes.Notes.Valid = true

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withNotes, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "Bring previous x-rays\n\nCancellation reason: patient request", fields[model.FieldNotes])

				return nil
			})

		res, err := f.service.ChangeStatus(testContext(), testCompanyID, 5, dto.ChangeStatusRequest{
			Status: "cancelled",
			Reason: "patient request",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusCancelled), res.Status)
		assert.Contains(t, res.Notes, "Cancellation reason: patient request")
	})

	t.Run("rejects transitions out of a terminal status", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		completed := current
		completed.Status = model.StatusCompleted

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(completed, nil)

		_, err := f.service.ChangeStatus(testContext(), testCompanyID, 5, dto.ChangeStatusRequest{Status: "scheduled"})

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})
}

func TestAppointmentService_AvailableSlots(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, timezone.GetLocation())

	t.Run("returns the full grid for an empty day", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().ListDay(gomock.Any(), testCompanyID, day, int64(0)).Return(nil, nil)

		res, err := f.service.AvailableSlots(testContext(), testCompanyID, "2026-03-10", 0)

		assert.NoError(t, err)
		assert.Len(t, res.Slots, 16)
		assert.Equal(t, "09:00", res.Slots[0])
		assert.Equal(t, "16:30", res.Slots[15])
	})

	t.Run("removes every slot a long appointment covers", func(t *testing.T) {
		f := newFixture(t)

		booked := []model.Appointment{existingAppointment(1, day.Add(10*time.Hour), 90, model.StatusConfirmed)}

		f.repo.EXPECT().ListDay(gomock.Any(), testCompanyID, day, int64(0)).Return(booked, nil)

		res, err := f.service.AvailableSlots(testContext(), testCompanyID, "2026-03-10", 0)

		assert.NoError(t, err)
		assert.Len(t, res.Slots, 13)
		assert.NotContains(t, res.Slots, "10:00")
		assert.NotContains(t, res.Slots, "10:30")
		assert.NotContains(t, res.Slots, "11:00")
		assert.Contains(t, res.Slots, "09:30")
		assert.Contains(t, res.Slots, "11:30")
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.AvailableSlots(testContext(), testCompanyID, "03/10/2026", 0)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})
}

func TestAppointmentService_DashboardStats(t *testing.T) {
	f := newFixture(t)
	f.expectCacheMiss()

	gomock.InOrder(
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil),
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(8, nil),
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(5, nil),
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil),
	)

	res, err := f.service.DashboardStats(testContext(), testCompanyID)

	assert.NoError(t, err)
	assert.Equal(t, 3, res.Today)
	assert.Equal(t, 8, res.ThisWeek)
	assert.Equal(t, 5, res.Upcoming)
	assert.Equal(t, 2, res.CompletedThisMonth)
}

func TestAppointmentService_DispatchDueReminders(t *testing.T) {
	due := []model.Appointment{
		existingAppointment(1, time.Date(2030, 3, 10, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled),
		existingAppointment(2, time.Date(2030, 3, 10, 11, 0, 0, 0, time.UTC), 30, model.StatusConfirmed),
	}

	t.Run("publishes and marks each due reminder", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().ListNeedingReminder(gomock.Any(), gomock.Any(), 100).Return(due, nil)
		f.kafka.EXPECT().SendMessages(gomock.Any(), "appointment.reminder_due", gomock.Any()).Return(nil).Times(2)
		f.repo.EXPECT().MarkReminderSent(gomock.Any(), int64(1), gomock.Any()).Return(nil)
		f.repo.EXPECT().MarkReminderSent(gomock.Any(), int64(2), gomock.Any()).Return(nil)

		dispatched, err := f.service.DispatchDueReminders(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 2, dispatched)
	})

	t.Run("skips marking when publishing fails", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().ListNeedingReminder(gomock.Any(), gomock.Any(), 100).Return(due, nil)

		gomock.InOrder(
			f.kafka.EXPECT().SendMessages(gomock.Any(), "appointment.reminder_due", gomock.Any()).Return(errors.New("broker down")),
			f.kafka.EXPECT().SendMessages(gomock.Any(), "appointment.reminder_due", gomock.Any()).Return(nil),
		)

		f.repo.EXPECT().MarkReminderSent(gomock.Any(), int64(2), gomock.Any()).Return(nil)

		dispatched, err := f.service.DispatchDueReminders(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 1, dispatched)
	})
}

func TestAppointmentService_GetAll(t *testing.T) {
	f := newFixture(t)
	f.expectCacheMiss()

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: "appointment_date", SortDir: "ASC"}
	filter := gDto.FilterGroup{}

	models := []model.Appointment{
		existingAppointment(1, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled),
	}

	f.repo.EXPECT().Count(gomock.Any(), filter).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, filter).Return(models, nil)

	res, err := f.service.GetAll(testContext(), params, filter)

	assert.NoError(t, err)
	assert.Len(t, res.Appointments, 1)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
}

func TestAppointmentService_Get(t *testing.T) {
	t.Run("returns the decorated appointment", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		appointment := existingAppointment(5, time.Date(2030, 3, 9, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(appointment, nil)

		res, err := f.service.Get(testContext(), testCompanyID, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), res.ID)
		assert.Equal(t, "blue", res.StatusBadgeColor)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		f := newFixture(t)
		f.expectCacheMiss()

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)

		_, err := f.service.Get(testContext(), testCompanyID, 404)

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestAppointmentService_Delete(t *testing.T) {
	f := newFixture(t)
	f.expectCacheMiss()

	appointment := existingAppointment(5, time.Date(2030, 3, 9, 10, 0, 0, 0, time.UTC), 30, model.StatusScheduled)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(appointment, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	err := f.service.Delete(testContext(), testCompanyID, 5)

	assert.NoError(t, err)
}
