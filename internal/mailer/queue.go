package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Queue 进程内尽力而为的邮件队列
// 单 worker 顺序消费，失败只记日志、不重试
// 注意：这是持久化队列（如 Redis/Bull）的占位实现，进程退出时未发送的任务会丢失
type Queue struct {
	jobs   chan job
	mailer Mailer
	logger *zap.Logger
}

type job struct {
	ID        string
	Recipient string
	Subject   string
	HTMLBody  string
	CreatedAt time.Time
}

// NewQueue 创建邮件队列（capacity 为积压上限）
func NewQueue(mailer Mailer, capacity int, logger *zap.Logger) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{
		jobs:   make(chan job, capacity),
		mailer: mailer,
		logger: logger,
	}
}

// Enqueue 追加任务；队列已满时返回错误（不阻塞调用方）
func (q *Queue) Enqueue(recipient, subject, htmlBody string) error {
	j := job{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Subject:   subject,
		HTMLBody:  htmlBody,
		CreatedAt: time.Now(),
	}

	select {
	case q.jobs <- j:
		q.logger.Info("Email job queued",
			zap.String("job_id", j.ID),
			zap.String("recipient", recipient),
			zap.String("subject", subject),
		)
		return nil
	default:
		return fmt.Errorf("email queue is full, dropping job for %s", recipient)
	}
}

// Start 启动 worker 循环（阻塞直到 ctx 取消）
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info("Email queue worker started", zap.Int("capacity", cap(q.jobs)))

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Email queue worker stopped", zap.Int("pending", len(q.jobs)))
			return
		case j := <-q.jobs:
			if err := q.mailer.Send(ctx, j.Recipient, j.Subject, j.HTMLBody); err != nil {
				q.logger.Error("Email job failed",
					zap.String("job_id", j.ID),
					zap.String("recipient", j.Recipient),
					zap.Error(err),
				)
				continue
			}
			q.logger.Info("Email job completed", zap.String("job_id", j.ID))
		}
	}
}
