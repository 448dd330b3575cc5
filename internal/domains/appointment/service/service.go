package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"clinicbook/config"
	"clinicbook/infras/kafka"
	"clinicbook/infras/otel"
	"clinicbook/internal/domains/appointment/model"
	"clinicbook/internal/domains/appointment/model/dto"
	"clinicbook/internal/domains/appointment/repository"
	"clinicbook/shared"
	"clinicbook/shared/cache"
	"clinicbook/shared/constant"
	gDto "clinicbook/shared/dto"
	"clinicbook/shared/failure"
	"clinicbook/shared/timezone"
)

const (
	cacheGetAppointment    = "appointment:get"
	cacheGetAllAppointment = "appointment:gets"
	cacheCountAppointment  = "appointment:count"
	cacheDashboardStats    = "appointment:stats"
)

const (
	eventBooked        = "appointment.booked"
	eventRescheduled   = "appointment.rescheduled"
	eventStatusChanged = "appointment.status_changed"
	eventReminderDue   = "appointment.reminder_due"
)

const (
	conflictMessageBook       = "This time slot is no longer available. Another appointment was booked for this time. Please select a different time."
	conflictMessageReschedule = "This time slot is no longer available. Another appointment exists at this time. Please select a different time."
	busyMessage               = "The schedule is being updated by another request. Please try again."

	cancellationReasonLabel = "Cancellation reason: "
)

const maxTokenAttempts = 5

type Appointment interface {
	Book(ctx context.Context, req dto.BookAppointmentRequest) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAppointmentsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, companyID, id int64) (dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, companyID, id int64, req dto.RescheduleAppointmentRequest) (dto.AppointmentResponse, error)
	ChangeStatus(ctx context.Context, companyID, id int64, req dto.ChangeStatusRequest) (dto.AppointmentResponse, error)
	Delete(ctx context.Context, companyID, id int64) error
	AvailableSlots(ctx context.Context, companyID int64, date string, excludeID int64) (dto.AvailableSlotsResponse, error)
	DashboardStats(ctx context.Context, companyID int64) (dto.DashboardStatsResponse, error)
	DispatchDueReminders(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo  repository.Appointment
	cfg   *config.Config
	cache cache.RedisCache
	kafka kafka.Client
	otel  otel.Otel
}

func New(repo repository.Appointment, cfg *config.Config, cache cache.RedisCache, kafkaClient kafka.Client, otel otel.Otel) Appointment {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		kafka: kafkaClient,
		otel:  otel,
	}
}

// Book creates an appointment under the per-(company, day) lock. All
// non-cancelled rows of that day are write-locked first, so two concurrent
// requests for the same window serialize: the first commits, the second
// re-reads the committed row and gets the overlap conflict.
func (s *serviceImpl) Book(ctx context.Context, req dto.BookAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Book")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	start, err := req.ParseDate()
	if err != nil {
		return res, failure.Validation(fmt.Sprintf("invalid appointment_date: %v", err)) //nolint:wrapcheck
	}

	appointment := req.ToModel(start, s.cfg.App.Booking.DefaultDurationMins, user)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin booking transaction")

		return res, fmt.Errorf("failed to begin booking transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to roll back booking transaction")
			}
		}
	}()

	locked, err := s.repo.LockDay(ctx, tx, req.CompanyID, model.DayStart(start), 0)
	if err != nil {
		if errors.Is(err, repository.ErrLockTimeout) {
			return res, failure.Busy(busyMessage) //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to lock appointment day")

		return res, fmt.Errorf("failed to lock appointment day: %w", err)
	}

	if conflict := findOverlap(locked, start, appointment.EndTime()); conflict != nil {
		return res, failure.Overlap(conflictMessageBook, conflictWindow(conflict)) //nolint:wrapcheck
	}

	id, err := s.repo.CreateTx(ctx, tx, appointment)
	if err != nil {
		log.Error().Err(err).Msg("failed to create appointment")

		return res, fmt.Errorf("failed to create appointment: %w", err)
	}

	hash, err := s.assignToken(ctx, tx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to assign appointment token")

		return res, fmt.Errorf("failed to assign appointment token: %w", err)
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit booking transaction")

		return res, fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	appointment.ID = id
	appointment.UniqueHash = sql.NullString{String: hash, Valid: true}

	s.afterWrite(ctx, eventBooked, appointment)
	res.FromModel(appointment)

	return res, nil
}

// assignToken generates the public token and claims it inside the creation
// transaction. A value that loses the uniqueness race is discarded and a fresh
// one is tried; the row ends up with exactly one token.
func (s *serviceImpl) assignToken(ctx context.Context, tx repository.Tx, id int64) (string, error) {
	for range maxTokenAttempts {
		hash := uuid.NewString()

		exists, err := s.repo.HashExistsTx(ctx, tx, hash)
		if err != nil {
			return constant.Empty, err
		}

		if exists {
			continue
		}

		err = s.repo.AssignUniqueHashTx(ctx, tx, id, hash)
		if errors.Is(err, repository.ErrHashCollision) {
			continue
		}

		if err != nil {
			return constant.Empty, err
		}

		return hash, nil
	}

	return constant.Empty, fmt.Errorf("exhausted %d unique hash attempts", maxTokenAttempts)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAppointment, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointments")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointments to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountAppointment, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointment count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, companyID, id int64) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetAppointment, strconv.FormatInt(companyID, 10), strconv.FormatInt(id, 10))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointment")

		return res, nil
	}

	appointment, err := s.fetch(ctx, companyID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(appointment)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment to cache")
		}
	}()

	return res, nil
}

// Reschedule moves an appointment to a new window under the same day-lock
// protocol as Book, excluding the appointment itself from the lock set so it
// never conflicts with its own current window.
func (s *serviceImpl) Reschedule(ctx context.Context, companyID, id int64, req dto.RescheduleAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reschedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.fetch(ctx, companyID, id)
	if err != nil {
		return res, err
	}

	if !current.CanBeModified(timezone.Now()) {
		if current.Status == model.StatusCompleted || current.Status == model.StatusCancelled {
			return res, failure.Validation(fmt.Sprintf("a %s appointment can no longer be rescheduled", current.Status)) //nolint:wrapcheck
		}

		return res, failure.Validation("an appointment that has already started can no longer be rescheduled") //nolint:wrapcheck
	}

	start, err := req.ParseDate()
	if err != nil {
		return res, failure.Validation(fmt.Sprintf("invalid appointment_date: %v", err)) //nolint:wrapcheck
	}

	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin reschedule transaction")

		return res, fmt.Errorf("failed to begin reschedule transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to roll back reschedule transaction")
			}
		}
	}()

	locked, err := s.repo.LockDay(ctx, tx, companyID, model.DayStart(start), id)
	if err != nil {
		if errors.Is(err, repository.ErrLockTimeout) {
			return res, failure.Busy(busyMessage) //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to lock appointment day")

		return res, fmt.Errorf("failed to lock appointment day: %w", err)
	}

	if conflict := findOverlap(locked, start, end); conflict != nil {
		return res, failure.Overlap(conflictMessageReschedule, conflictWindow(conflict)) //nolint:wrapcheck
	}

	if err = s.repo.UpdateTx(ctx, tx, req.UpdatedFields(start, user), id); err != nil {
		log.Error().Err(err).Msg("failed to update appointment")

		return res, fmt.Errorf("failed to update appointment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit reschedule transaction")

		return res, fmt.Errorf("failed to commit reschedule transaction: %w", err)
	}

	updated, err := s.fetch(ctx, companyID, id)
	if err != nil {
		return res, err
	}

	s.afterWrite(ctx, eventRescheduled, updated)
	res.FromModel(updated)

	return res, nil
}

// ChangeStatus applies the transition table. Completed and cancelled rows are
// terminal. Cancelling with a reason appends it to the notes so the record
// keeps the full history.
func (s *serviceImpl) ChangeStatus(ctx context.Context, companyID, id int64, req dto.ChangeStatusRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangeStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.fetch(ctx, companyID, id)
	if err != nil {
		return res, err
	}

	next := model.Status(req.Status)
	if !model.CanTransition(current.Status, next) {
		return res, failure.Validation(fmt.Sprintf("cannot change status from %s to %s", current.Status, next)) //nolint:wrapcheck
	}

	fields := map[string]any{
		model.FieldStatus:        next,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	notes := current.Notes.String

	if next == model.StatusCancelled && req.Reason != constant.Empty {
		if notes != constant.Empty {
			notes += "\n\n"
		}

		notes += cancellationReasonLabel + req.Reason
		fields[model.FieldNotes] = notes
	}

	if err = s.repo.Update(ctx, fields, filterByIDAndCompany(id, companyID)); err != nil {
		log.Error().Err(err).Msg("failed to change appointment status")

		return res, fmt.Errorf("failed to change appointment status: %w", err)
	}

	current.Status = next
	current.Notes = sql.NullString{String: notes, Valid: notes != constant.Empty}

	s.afterWrite(ctx, eventStatusChanged, current)
	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, companyID, id int64) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()

	appointment, err := s.fetch(ctx, companyID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, filterByIDAndCompany(id, companyID)); err != nil {
		log.Error().Err(err).Msg("failed to delete appointment")

		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.invalidate(ctx, appointment)

	return nil
}

// AvailableSlots computes the advisory slot grid for a day. It reads without
// locking; the authoritative overlap check still runs at booking time, so a
// slot shown here can legitimately be lost to a concurrent booker.
func (s *serviceImpl) AvailableSlots(ctx context.Context, companyID int64, date string, excludeID int64) (res dto.AvailableSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AvailableSlots")
	defer scope.End()
	defer scope.TraceIfError(err)

	day, err := timezone.Parse(constant.DayFormat, date)
	if err != nil {
		return res, failure.Validation(fmt.Sprintf("invalid date: %v", err)) //nolint:wrapcheck
	}

	booked, err := s.repo.ListDay(ctx, companyID, day, excludeID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list appointments for day")

		return res, fmt.Errorf("failed to list appointments for day: %w", err)
	}

	booking := s.cfg.App.Booking
	slot := time.Duration(booking.SlotMinutes) * time.Minute
	opening := day.Add(time.Duration(booking.BusinessHoursStart) * time.Hour)
	closing := day.Add(time.Duration(booking.BusinessHoursEnd) * time.Hour)

	res.Slots = []string{}

	for slotStart := opening; slotStart.Before(closing); slotStart = slotStart.Add(slot) {
		if findOverlap(booked, slotStart, slotStart.Add(slot)) == nil {
			res.Slots = append(res.Slots, timezone.Format(slotStart, constant.ClockFormat))
		}
	}

	return res, nil
}

// DashboardStats aggregates the admin dashboard counters for a company.
func (s *serviceImpl) DashboardStats(ctx context.Context, companyID int64) (res dto.DashboardStatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DashboardStats")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheDashboardStats, strconv.FormatInt(companyID, 10))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for dashboard stats")

		return res, nil
	}

	now := timezone.Now()
	today := model.DayStart(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	res.Today, err = s.repo.Count(ctx, dateRangeFilter(companyID, today, today.AddDate(0, 0, 1), nil))
	if err != nil {
		return res, fmt.Errorf("failed to count today's appointments: %w", err)
	}

	res.ThisWeek, err = s.repo.Count(ctx, dateRangeFilter(companyID, weekStart, weekStart.AddDate(0, 0, 7), nil))
	if err != nil {
		return res, fmt.Errorf("failed to count this week's appointments: %w", err)
	}

	res.Upcoming, err = s.repo.Count(ctx, upcomingFilter(companyID, now))
	if err != nil {
		return res, fmt.Errorf("failed to count upcoming appointments: %w", err)
	}

	completed := model.StatusCompleted

	res.CompletedThisMonth, err = s.repo.Count(ctx, dateRangeFilter(companyID, monthStart, monthStart.AddDate(0, 1, 0), &completed))
	if err != nil {
		return res, fmt.Errorf("failed to count completed appointments: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save dashboard stats to cache")
		}
	}()

	return res, nil
}

// DispatchDueReminders publishes a reminder event for every appointment whose
// reminder window has opened, then stamps it sent. Delivery itself is owned by
// the notification consumer.
func (s *serviceImpl) DispatchDueReminders(ctx context.Context) (dispatched int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelReminderScopeName, constant.OtelReminderScopeName+".DispatchDueReminders")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := timezone.Now()

	due, err := s.repo.ListNeedingReminder(ctx, now, s.cfg.Reminder.BatchLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list due reminders")

		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, appointment := range due {
		message := kafka.Message{
			Key:   strconv.FormatInt(appointment.ID, 10),
			Value: dto.NewAppointmentEvent(eventReminderDue, appointment),
		}

		if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.ReminderDue, message); err != nil {
			log.Error().Err(err).Int64("appointmentID", appointment.ID).Msg("failed to publish reminder event")

			continue
		}

		if err := s.repo.MarkReminderSent(ctx, appointment.ID, now); err != nil {
			log.Error().Err(err).Int64("appointmentID", appointment.ID).Msg("failed to mark reminder sent")

			continue
		}

		dispatched++
	}

	return dispatched, nil
}

// fetch loads one row scoped to the company; a zero ID means not found.
func (s *serviceImpl) fetch(ctx context.Context, companyID, id int64) (model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, filterByIDAndCompany(id, companyID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment")

		return appointment, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == 0 {
		return appointment, failure.NotFound(model.EntityName) //nolint:wrapcheck
	}

	return appointment, nil
}

// afterWrite publishes the lifecycle event and drops the affected cache
// entries. Both run detached so request latency stays unaffected.
func (s *serviceImpl) afterWrite(ctx context.Context, event string, appointment model.Appointment) {
	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key:   strconv.FormatInt(appointment.ID, 10),
			Value: dto.NewAppointmentEvent(event, appointment),
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.AppointmentEvents, message); err != nil {
			log.Error().Err(err).Str("event", event).Msg("failed to publish appointment event")
		}
	}()

	s.invalidate(ctx, appointment)
}

func (s *serviceImpl) invalidate(ctx context.Context, appointment model.Appointment) {
	go func() {
		c := context.WithoutCancel(ctx)

		company := strconv.FormatInt(appointment.CompanyID, 10)

		shared.InvalidateCaches(c, s.cache, cacheGetAllAppointment)
		shared.InvalidateCaches(c, s.cache, cacheCountAppointment)
		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheGetAppointment, company, strconv.FormatInt(appointment.ID, 10)))
		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheDashboardStats, company))
	}()
}

// findOverlap returns the first appointment whose window intersects the
// proposed half-open interval, or nil.
func findOverlap(appointments []model.Appointment, start, end time.Time) *model.Appointment {
	for i := range appointments {
		if appointments[i].Overlaps(start, end) {
			return &appointments[i]
		}
	}

	return nil
}

func conflictWindow(appointment *model.Appointment) failure.ConflictWindow {
	return failure.ConflictWindow{
		Start: timezone.Format(appointment.AppointmentDate, constant.ClockFormat12h),
		End:   timezone.Format(appointment.EndTime(), constant.ClockFormat12h),
	}
}

func filterByIDAndCompany(id, companyID int64) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			shared.FilterByCompany(companyID, model.FieldCompanyID, model.TableName),
		},
	}
}

func dateRangeFilter(companyID int64, from, to time.Time, status *model.Status) gDto.FilterGroup {
	filters := []any{
		shared.FilterByCompany(companyID, model.FieldCompanyID, model.TableName),
		gDto.Filter{
			ArgName:  "date_from",
			Field:    model.FieldAppointmentDate,
			Value:    from,
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			ArgName:  "date_to",
			Field:    model.FieldAppointmentDate,
			Value:    to,
			Operator: gDto.FilterOperatorLess,
			Table:    model.TableName,
		},
	}

	if status != nil {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    string(*status),
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

func upcomingFilter(companyID int64, now time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			shared.FilterByCompany(companyID, model.FieldCompanyID, model.TableName),
			gDto.Filter{
				ArgName:  "date_from",
				Field:    model.FieldAppointmentDate,
				Value:    now,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    []string{string(model.StatusScheduled), string(model.StatusConfirmed)},
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}
}
