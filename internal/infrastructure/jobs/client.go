package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/transfer"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// refreshDelay agrupa los traslados de un mismo día en un solo recálculo.
const refreshDelay = 30 * time.Second

// Client encola tareas.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	log       *logger.Logger
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		client:    asynq.NewClient(redisOpts),
		inspector: asynq.NewInspector(redisOpts),
		log:       log.Named("jobs"),
	}
}

// EnqueueDailySummary encola el recálculo de la foto desde date hasta hoy.
// Si ya hay una tarea para esa fecha que todavía no empezó, esa tarea verá
// este traslado y no se encola otra. Si la existente ya está en curso (o
// quedó archivada) se encola una nueva con id propio.
func (c *Client) EnqueueDailySummary(ctx context.Context, date time.Time) error {
	task, err := NewDailySummaryTask(date)
	if err != nil {
		return err
	}
	id := TaskDailySummary + ":" + date.UTC().Format(dateLayout)
	err = c.enqueue(ctx, task, id)
	if !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	if info, ierr := c.inspector.GetTaskInfo(QueueDefault, id); ierr == nil && notStarted(info.State) {
		return nil
	}
	return c.enqueue(ctx, task, id+":"+uuid.NewString())
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, id string) error {
	_, err := c.client.EnqueueContext(ctx, task,
		asynq.TaskID(id),
		asynq.ProcessIn(refreshDelay),
		asynq.MaxRetry(5),
	)
	return err
}

// notStarted la tarea todavía no leyó el libro.
func notStarted(state asynq.TaskState) bool {
	switch state {
	case asynq.TaskStatePending, asynq.TaskStateScheduled, asynq.TaskStateRetry:
		return true
	}
	return false
}

// Posted encola el recálculo desde la fecha del traslado confirmado; un
// traslado con fecha pasada cambia los cierres de todos los días siguientes.
func (c *Client) Posted(ctx context.Context, receipt *transfer.Receipt) error {
	if c == nil || receipt == nil {
		return nil
	}
	if err := c.EnqueueDailySummary(ctx, receipt.Date); err != nil {
		c.log.Warn().Err(err).Str("reference_id", receipt.ReferenceID).Msg("no se pudo encolar la foto diaria")
		return err
	}
	return nil
}

// Close libera las conexiones.
func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}

var _ transfer.PostingObserver = (*Client)(nil)
