package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"clinicbook/config"
	"clinicbook/internal/domains/appointment/service"
)

// Worker periodically dispatches due appointment reminders. Delivery is owned
// by the notification consumer on the other side of the topic; this loop only
// decides due-ness and guarantees each reminder is published once.
type Worker struct {
	service service.Appointment
	cfg     *config.Config
}

func New(service service.Appointment, cfg *config.Config) *Worker {
	return &Worker{
		service: service,
		cfg:     cfg,
	}
}

// Run polls until the context is cancelled. One batch runs immediately on
// start so a restart does not delay overdue reminders by a full interval.
func (w *Worker) Run(ctx context.Context) error {
	interval := time.Duration(w.cfg.Reminder.PollIntervalSeconds) * time.Second

	log.Info().Dur("interval", interval).Msg("Reminder worker started")

	w.dispatch(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reminder worker stopped")

			return ctx.Err() //nolint:wrapcheck
		case <-ticker.C:
			w.dispatch(ctx)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context) {
	dispatched, err := w.service.DispatchDueReminders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to dispatch due reminders")

		return
	}

	if dispatched > 0 {
		log.Info().Int("dispatched", dispatched).Msg("Dispatched appointment reminders")
	}
}
