package alert

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/mailer"
)

// Dispatcher 告警邮件投递器
// 收件人之间相互独立：并发发送，单个失败不阻塞、不中断其他收件人
// 周期内不重试；瞬时失败靠下一个调度周期（若超限仍在）自然纠正
type Dispatcher struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewDispatcher 创建投递器
func NewDispatcher(m mailer.Mailer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: m, logger: logger}
}

// Dispatch 向每个收件人投递同一封告警邮件，收齐全部结果后返回
// 返回的切片与 recipients 一一对应
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, recipients []string) []domain.DeliveryOutcome {
	outcomes := make([]domain.DeliveryOutcome, len(recipients))

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()

			if err := d.mailer.Send(ctx, recipient, msg.Subject, msg.HTMLBody); err != nil {
				d.logger.Error("Failed to send alert email",
					zap.String("recipient", recipient),
					zap.Error(err),
				)
				outcomes[i] = domain.DeliveryOutcome{
					Recipient:    recipient,
					Succeeded:    false,
					ErrorMessage: err.Error(),
				}
				return
			}

			d.logger.Info("Alert email sent", zap.String("recipient", recipient))
			outcomes[i] = domain.DeliveryOutcome{Recipient: recipient, Succeeded: true}
		}(i, recipient)
	}
	wg.Wait()

	return outcomes
}
