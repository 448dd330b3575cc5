package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"clinicbook/config"
	"clinicbook/infras/otel"
	"clinicbook/infras/postgres"
	"clinicbook/internal/domains/appointment/model"
	"clinicbook/shared/constant"
	gDto "clinicbook/shared/dto"
	"clinicbook/shared/logger"
	gRepo "clinicbook/shared/repository"
)

var (
	// ErrLockTimeout is returned when the per-day lock cannot be acquired within
	// the configured lock_timeout. The caller may retry after backing off.
	ErrLockTimeout = errors.New("timed out waiting for the booking lock")

	// ErrHashCollision is returned when the unique hash lost a uniqueness race.
	ErrHashCollision = errors.New("unique hash already taken")
)

const selectColumns = `id, company_id, customer_id, creator_id, unique_hash, title, description,
	appointment_date, duration_minutes, status, type, patient_name, patient_phone, patient_email,
	chief_complaint, notes, preparation_instructions, send_reminder, reminder_hours_before,
	reminder_sent_at, created_at, modified_at, created_by, modified_by`

const insertColumns = `company_id, customer_id, creator_id, title, description, appointment_date,
	duration_minutes, status, type, patient_name, patient_phone, patient_email, chief_complaint,
	notes, preparation_instructions, send_reminder, reminder_hours_before, created_at, modified_at,
	created_by, modified_by`

const insertValues = `:company_id, :customer_id, :creator_id, :title, :description, :appointment_date,
	:duration_minutes, :status, :type, :patient_name, :patient_phone, :patient_email, :chief_complaint,
	:notes, :preparation_instructions, :send_reminder, :reminder_hours_before, :created_at, :modified_at,
	:created_by, :modified_by`

// Tx is the transaction handle threaded through the booking protocol. It hides
// the sqlx transaction so the service layer stays mockable.
type Tx interface {
	Commit() error
	Rollback() error
}

type Appointment interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	BeginTx(ctx context.Context) (Tx, error)
	LockDay(ctx context.Context, tx Tx, companyID int64, dayStart time.Time, excludeID int64) ([]model.Appointment, error)
	CreateTx(ctx context.Context, tx Tx, appointment model.Appointment) (int64, error)
	HashExistsTx(ctx context.Context, tx Tx, hash string) (bool, error)
	AssignUniqueHashTx(ctx context.Context, tx Tx, id int64, hash string) error
	UpdateTx(ctx context.Context, tx Tx, fields map[string]any, id int64) error

	ListDay(ctx context.Context, companyID int64, dayStart time.Time, excludeID int64) ([]model.Appointment, error)
	ListNeedingReminder(ctx context.Context, now time.Time, limit int) ([]model.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
	db   *postgres.Connection
	cfg  *config.Config
	otel otel.Otel
}

func New(db *postgres.Connection, cfg *config.Config, otl otel.Otel) Appointment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otl),
		db:         db,
		cfg:        cfg,
		otel:       otl,
	}
}

func sqlTx(tx Tx) (*sqlx.Tx, error) {
	sqltx, ok := tx.(*sqlx.Tx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction handle %T", tx)
	}

	return sqltx, nil
}

// BeginTx opens a write transaction with the configured lock_timeout so a
// blocked day-lock acquisition fails fast instead of queueing forever.
func (repo *repositoryImpl) BeginTx(ctx context.Context) (Tx, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.BeginTx")
	defer scope.End()

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	timeout := repo.cfg.App.Booking.LockTimeoutSeconds
	if timeout > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%ds'", timeout)); err != nil {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			_ = tx.Rollback()

			return nil, fmt.Errorf("failed to set lock timeout (%s): %w", model.EntityName, err)
		}
	}

	return tx, nil
}

// LockDay reads and write-locks every non-cancelled appointment of the company
// on the given day. Concurrent bookers for the same tenant-day block here until
// the holder commits or rolls back, then re-read the committed rows.
func (repo *repositoryImpl) LockDay(ctx context.Context, tx Tx, companyID int64, dayStart time.Time, excludeID int64) ([]model.Appointment, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.LockDay")
	defer scope.End()

	sqltx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE company_id = $1
		  AND appointment_date >= $2 AND appointment_date < $3
		  AND status <> $4`, selectColumns, model.TableName)
	args := []any{companyID, dayStart, dayStart.AddDate(0, 0, 1), model.StatusCancelled}

	if excludeID > 0 {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}

	query += " ORDER BY appointment_date FOR UPDATE"
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var models []model.Appointment

	err = sqltx.SelectContext(ctx, &models, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeLockNotAvailable {
			return nil, ErrLockTimeout
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to lock appointments for day (%s): %w", model.EntityName, err)
	}

	return models, nil
}

// CreateTx inserts the appointment inside the booking transaction and returns
// the generated identity.
func (repo *repositoryImpl) CreateTx(ctx context.Context, tx Tx, appointment model.Appointment) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.CreateTx")
	defer scope.End()

	sqltx, err := sqlTx(tx)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", model.TableName, insertColumns, insertValues)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := sqltx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare insert (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var id int64

	err = prepare.GetContext(ctx, &id, appointment)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return id, nil
}

// HashExistsTx checks hash uniqueness inside the creation transaction.
func (repo *repositoryImpl) HashExistsTx(ctx context.Context, tx Tx, hash string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.HashExistsTx")
	defer scope.End()

	sqltx, err := sqlTx(tx)
	if err != nil {
		return false, err
	}

	exists := false

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE unique_hash = $1)", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = sqltx.GetContext(ctx, &exists, query, hash)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check unique hash (%s): %w", model.EntityName, err)
	}

	return exists, nil
}

// AssignUniqueHashTx sets the public token exactly once. A row whose hash is
// already set is left untouched; losing a uniqueness race surfaces
// ErrHashCollision so the caller can retry with a fresh value.
func (repo *repositoryImpl) AssignUniqueHashTx(ctx context.Context, tx Tx, id int64, hash string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.AssignUniqueHashTx")
	defer scope.End()

	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET unique_hash = $2 WHERE id = $1 AND unique_hash IS NULL", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, id, hash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
			return ErrHashCollision
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to assign unique hash (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	if affected == 0 {
		// Hash already assigned; assignment is exactly-once per row.
		return nil
	}

	return nil
}

// UpdateTx applies the column map to a single row inside the booking transaction.
func (repo *repositoryImpl) UpdateTx(ctx context.Context, tx Tx, fields map[string]any, id int64) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.UpdateTx")
	defer scope.End()

	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return repo.Repository.UpdateTx(ctx, sqltx, fields, filter) //nolint:wrapcheck
}

// ListDay fetches the company's non-cancelled appointments for a day without
// locking. Used by the advisory slot computation.
func (repo *repositoryImpl) ListDay(ctx context.Context, companyID int64, dayStart time.Time, excludeID int64) ([]model.Appointment, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.ListDay")
	defer scope.End()

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE company_id = $1
		  AND appointment_date >= $2 AND appointment_date < $3
		  AND status <> $4`, selectColumns, model.TableName)
	args := []any{companyID, dayStart, dayStart.AddDate(0, 0, 1), model.StatusCancelled}

	if excludeID > 0 {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}

	query += " ORDER BY appointment_date"
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var models []model.Appointment

	err := repo.db.Read.SelectContext(ctx, &models, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list appointments for day (%s): %w", model.EntityName, err)
	}

	return models, nil
}

// ListNeedingReminder returns appointments whose reminder window has opened
// and whose reminder has not been dispatched yet.
func (repo *repositoryImpl) ListNeedingReminder(ctx context.Context, now time.Time, limit int) ([]model.Appointment, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.ListNeedingReminder")
	defer scope.End()

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE send_reminder = true
		  AND reminder_sent_at IS NULL
		  AND appointment_date > $1
		  AND appointment_date <= $1 + make_interval(hours => reminder_hours_before)
		ORDER BY appointment_date
		LIMIT $2`, selectColumns, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var models []model.Appointment

	err := repo.db.Read.SelectContext(ctx, &models, query, now, limit)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list appointments needing reminder (%s): %w", model.EntityName, err)
	}

	return models, nil
}

// MarkReminderSent stamps the dispatch time, once.
func (repo *repositoryImpl) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.MarkReminderSent")
	defer scope.End()

	query := fmt.Sprintf("UPDATE %s SET reminder_sent_at = $2, modified_at = $2 WHERE id = $1 AND reminder_sent_at IS NULL", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to mark reminder sent (%s): %w", model.EntityName, err)
	}

	return nil
}
