// Package jobs encola y procesa los trabajos en segundo plano sobre asynq:
// el recálculo de la foto diaria del libro de stock.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskDailySummary recalcula la foto diaria desde una fecha hasta hoy.
	TaskDailySummary = "stock:daily-summary"

	dateLayout = "2006-01-02"
)

// DailySummaryPayload primer día a recalcular (YYYY-MM-DD); vacía = sólo hoy.
// Las fotos de los días siguientes dependen del cierre de ese día, así que se
// recalculan todos hasta hoy (UTC).
type DailySummaryPayload struct {
	Date string `json:"date,omitempty"`
}

// NewDailySummaryTask construye la tarea para la fecha indicada (zero = hoy al procesar).
func NewDailySummaryTask(date time.Time) (*asynq.Task, error) {
	var payload DailySummaryPayload
	if !date.IsZero() {
		payload.Date = date.UTC().Format(dateLayout)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailySummary, body, asynq.Queue(QueueDefault)), nil
}

// SummaryRefresher recalcula la foto diaria (ver analytics.ReportsUseCase).
type SummaryRefresher interface {
	RefreshDailySummary(ctx context.Context, date string) (*dto.RefreshSummaryDTO, error)
}

// DailySummaryJob procesa TaskDailySummary.
type DailySummaryJob struct {
	refresher SummaryRefresher
	log       *logger.Logger
	now       func() time.Time
}

// NewDailySummaryJob construye el handler.
func NewDailySummaryJob(refresher SummaryRefresher, log *logger.Logger) *DailySummaryJob {
	if log == nil {
		log = logger.Nop()
	}
	return &DailySummaryJob{refresher: refresher, log: log.Named("jobs"), now: time.Now}
}

// Handle payload inválido o fecha inválida no se reintentan. Un reintento
// recalcula el rango completo; el upsert de cada día es idempotente.
func (j *DailySummaryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailySummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.log.Error().Err(err).Str("task", t.Type()).Msg("payload inválido")
		return fmt.Errorf("decodificar payload: %v: %w", err, asynq.SkipRetry)
	}
	days, err := j.days(payload.Date)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	for _, day := range days {
		out, err := j.refresher.RefreshDailySummary(ctx, day)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
			}
			return err
		}
		j.log.Info().Str("date", out.Date).Interface("rows", out.Rows).Msg("foto diaria procesada")
	}
	return nil
}

// days fechas a recalcular: desde la indicada hasta hoy inclusive.
func (j *DailySummaryJob) days(from string) ([]string, error) {
	if from == "" {
		return []string{""}, nil
	}
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, domain.Invalid("date inválido %q", from)
	}
	now := j.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.After(today) {
		return []string{from}, nil
	}
	var out []string
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateLayout))
	}
	return out, nil
}
