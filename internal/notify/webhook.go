package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

// WebhookNotifier 可选的第二告警通道：把本周期的超限汇总 POST 到配置的 URL
// 尽力而为：失败只记日志，不影响邮件投递，也不重试到下一周期
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// webhookPayload 推送的 JSON 结构
type webhookPayload struct {
	Source      string                `json:"source"`
	CheckedAt   time.Time             `json:"checked_at"`
	BreachCount int                   `json:"breach_count"`
	Breaches    []domain.BreachRecord `json:"breaches"`
	Thresholds  struct {
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
		HumMin  float64 `json:"hum_min"`
		HumMax  float64 `json:"hum_max"`
	} `json:"thresholds"`
}

// NewWebhookNotifier 创建 webhook 通知器
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Notify 推送本周期的超限汇总
func (n *WebhookNotifier) Notify(ctx context.Context, breaches []domain.BreachRecord, cfg *config.AlertConfig) error {
	payload := webhookPayload{
		Source:      "enviromonitor",
		CheckedAt:   time.Now(),
		BreachCount: len(breaches),
		Breaches:    breaches,
	}
	payload.Thresholds.TempMin = cfg.TempMin
	payload.Thresholds.TempMax = cfg.TempMax
	payload.Thresholds.HumMin = cfg.HumMin
	payload.Thresholds.HumMax = cfg.HumMax

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	n.logger.Info("Webhook notification delivered",
		zap.String("url", n.url),
		zap.Int("breach_count", len(breaches)),
	)
	return nil
}
