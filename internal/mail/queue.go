package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Dispatch when the queue is not running
var ErrQueueClosed = errors.New("mail queue is not running")

// QueueConfig holds configuration for the mail queue
type QueueConfig struct {
	Workers      int
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
	SendTimeout  time.Duration
	SenderName   string
}

// DefaultQueueConfig returns default configuration
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Workers:      2,
		QueueSize:    100,
		MaxAttempts:  3,
		RetryBackoff: 5 * time.Second,
		SendTimeout:  30 * time.Second,
		SenderName:   "Billing",
	}
}

// Recorder observes the final status of each mail task
type Recorder interface {
	MailTaskFinished(status string)
}

type task struct {
	id        string
	tenant    tenant.Tenant
	companyID int64
	userID    int64
	msg       port.MailMessage
}

// Queue delivers mails on a pool of background workers. Each task is
// recorded in the tenant's notification log and retried with linear backoff.
type Queue struct {
	config    QueueConfig
	transport port.MailTransport
	logs      port.NotificationLogRepository
	recorder  Recorder
	logger    *zap.Logger

	tasks chan task

	// Runtime state
	mu        sync.RWMutex
	ctx       context.Context
	quit      chan struct{}
	wg        sync.WaitGroup
	isRunning bool

	statsMu sync.Mutex
	sent    int
	failed  int
}

// NewQueue creates a new mail queue. Zero config values take their defaults.
func NewQueue(config QueueConfig, transport port.MailTransport, logs port.NotificationLogRepository, logger *zap.Logger) *Queue {
	defaults := DefaultQueueConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	if config.SenderName == "" {
		config.SenderName = defaults.SenderName
	}

	return &Queue{
		config:    config,
		transport: transport,
		logs:      logs,
		logger:    logger,
		tasks:     make(chan task, config.QueueSize),
	}
}

// SetRecorder installs r to observe task outcomes. Call it before Start.
func (q *Queue) SetRecorder(r Recorder) {
	q.recorder = r
}

// Start launches the workers
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.isRunning {
		return fmt.Errorf("mail queue already running")
	}

	q.ctx = ctx
	q.quit = make(chan struct{})
	q.isRunning = true

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.work(q.quit)
	}

	q.logger.Info("MailQueue started",
		zap.Int("workers", q.config.Workers),
		zap.Int("queue_size", q.config.QueueSize),
		zap.Int("max_attempts", q.config.MaxAttempts))

	return nil
}

// Stop refuses new tasks, lets the workers finish the buffered ones and waits for them
func (q *Queue) Stop() error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	close(q.quit)
	q.mu.Unlock()

	q.wg.Wait()

	sent, failed := q.Stats()
	q.logger.Info("MailQueue stopped",
		zap.Int("sent_count", sent),
		zap.Int("failed_count", failed))

	return nil
}

// Name returns the worker name for identification
func (q *Queue) Name() string {
	return "MailQueue"
}

// Stats returns the number of delivered and failed tasks since creation
func (q *Queue) Stats() (sent, failed int) {
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	return q.sent, q.failed
}

// Dispatch records a QUEUED notification log in the tenant database carried
// by ctx and enqueues the mail. It blocks while the buffer is full.
func (q *Queue) Dispatch(ctx context.Context, mo *MailerObject) (string, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return "", tenant.ErrNoTenant
	}
	if mo.ToUser == nil || mo.ToUser.Email == "" {
		return "", fmt.Errorf("mail has no recipient")
	}

	// The read lock is held across the send so Stop never closes intake
	// while a task is in flight to the buffer.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.isRunning {
		return "", ErrQueueClosed
	}

	tk := task{
		id:     uuid.NewString(),
		tenant: t,
		userID: mo.ToUser.ID,
		msg:    mo.Message(q.config.SenderName),
	}
	if mo.Company != nil {
		tk.companyID = mo.Company.ID
	}

	if err := q.logs.Create(ctx, &entity.NotificationLog{
		TaskID:    tk.id,
		CompanyID: tk.companyID,
		UserID:    tk.userID,
		Channel:   entity.ChannelMail,
		Recipient: tk.msg.To,
		Subject:   tk.msg.Subject,
		Status:    entity.NotificationStatusQueued,
	}); err != nil {
		return "", fmt.Errorf("failed to record mail task: %w", err)
	}

	select {
	case q.tasks <- tk:
	case <-ctx.Done():
		detached := tenant.WithTenant(context.Background(), t)
		if err := q.logs.UpdateStatus(detached, tk.id, entity.NotificationStatusFailed, 0, ctx.Err().Error()); err != nil {
			q.logger.Error("Failed to update notification log", zap.String("task_id", tk.id), zap.Error(err))
		}
		return "", ctx.Err()
	}

	q.logger.Debug("Mail task queued",
		zap.String("task_id", tk.id),
		zap.String("db", t.Name),
		zap.String("recipient", tk.msg.To))

	return tk.id, nil
}

func (q *Queue) work(quit <-chan struct{}) {
	defer q.wg.Done()

	for {
		select {
		case tk := <-q.tasks:
			q.process(tk)
		case <-quit:
			for {
				select {
				case tk := <-q.tasks:
					q.process(tk)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) process(tk task) {
	ctx := q.ctx
	if ctx.Err() != nil {
		q.logger.Warn("Mail task left queued after shutdown", zap.String("task_id", tk.id))
		return
	}

	var lastErr error
	for attempt := 1; attempt <= q.config.MaxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, q.config.SendTimeout)
		lastErr = q.transport.Send(sendCtx, tk.msg)
		cancel()

		if lastErr == nil {
			q.finish(tk, entity.NotificationStatusSent, attempt, nil)
			return
		}

		q.logger.Warn("Mail delivery attempt failed",
			zap.String("task_id", tk.id),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt == q.config.MaxAttempts {
			break
		}
		select {
		case <-time.After(q.config.RetryBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			q.finish(tk, entity.NotificationStatusFailed, attempt, ctx.Err())
			return
		}
	}

	q.finish(tk, entity.NotificationStatusFailed, q.config.MaxAttempts, lastErr)
}

// finish records the outcome. The log update runs detached from the queue
// context so a shutdown does not lose it.
func (q *Queue) finish(tk task, status string, attempts int, cause error) {
	q.statsMu.Lock()
	if status == entity.NotificationStatusSent {
		q.sent++
	} else {
		q.failed++
	}
	q.statsMu.Unlock()

	if q.recorder != nil {
		q.recorder.MailTaskFinished(status)
	}

	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}

	ctx := tenant.WithTenant(context.Background(), tk.tenant)
	if err := q.logs.UpdateStatus(ctx, tk.id, status, attempts, errMsg); err != nil {
		q.logger.Error("Failed to update notification log",
			zap.String("task_id", tk.id),
			zap.String("status", status),
			zap.Error(err))
	}

	if status == entity.NotificationStatusSent {
		q.logger.Info("Mail delivered",
			zap.String("task_id", tk.id),
			zap.String("recipient", tk.msg.To),
			zap.Int("attempts", attempts))
		return
	}
	q.logger.Error("Mail delivery failed",
		zap.String("task_id", tk.id),
		zap.String("recipient", tk.msg.To),
		zap.Int("attempts", attempts),
		zap.String("error", errMsg))
}

var _ Dispatcher = (*Queue)(nil)
