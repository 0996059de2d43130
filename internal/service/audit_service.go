package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/jobs"
)

const auditWriteTimeout = 5 * time.Second

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService writes audit records through a background worker queue.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue[models.AuditLog]
	metrics *MetricsService
	logger  *zap.Logger
}

// AuditConfig sizes the audit worker pool.
type AuditConfig struct {
	Workers    int
	BufferSize int
}

// NewAuditService constructs the service and its queue. Call Start before recording.
func NewAuditService(repo auditRepository, metrics *MetricsService, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("audit", s.write, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending records and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record queues an audit entry without blocking. Entries that cannot be queued are dropped.
func (s *AuditService) Record(entry models.AuditLog) {
	if s == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(entry); err != nil {
		s.metrics.IncAuditDropped()
		s.logger.Warn("audit record dropped", zap.String("resource", entry.Resource), zap.String("action", entry.Action), zap.Error(err))
	}
}

func (s *AuditService) write(ctx context.Context, entry models.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()
	return s.repo.Create(ctx, &entry)
}
