package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/alert"
	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/mailer"
)

// AlertHandler 告警配置查询 + 测试邮件
type AlertHandler struct {
	cfg    *config.AlertConfig
	queue  *mailer.Queue
	logger *zap.Logger
}

// NewAlertHandler 创建 AlertHandler
func NewAlertHandler(cfg *config.AlertConfig, queue *mailer.Queue, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{cfg: cfg, queue: queue, logger: logger}
}

// GetConfig 返回当前阈值配置（dashboard 的阈值提示用；不暴露收件人地址）
// GET /alerts/config
func (h *AlertHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"enabled":            h.cfg.Enabled,
		"tempMin":            h.cfg.TempMin,
		"tempMax":            h.cfg.TempMax,
		"humMin":             h.cfg.HumMin,
		"humMax":             h.cfg.HumMax,
		"recipientCount":     len(h.cfg.Recipients),
		"checkIntervalMins":  int(h.cfg.CheckInterval.Minutes()),
	}))
}

// SendTest 给全部配置的收件人排队发送一封样例告警（走尽力而为队列，立即返回）
// POST /alerts/test
func (h *AlertHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if len(h.cfg.Recipients) == 0 {
		writeJSON(w, http.StatusBadRequest, Fail("no alert recipients configured"))
		return
	}

	now := time.Now()
	temp := h.cfg.TempMax + 2
	hum := (h.cfg.HumMin + h.cfg.HumMax) / 2
	name := "Test location"
	sample := []domain.BreachRecord{{
		LocationCode:      "TEST-000",
		LocationName:      &name,
		Temperature:       &temp,
		Humidity:          &hum,
		LogDate:           &now,
		TemperatureStatus: domain.StatusHigh,
		HumidityStatus:    domain.StatusNormal,
	}}
	msg := alert.BuildMessage(sample, h.cfg)

	queued := 0
	for _, recipient := range h.cfg.Recipients {
		if err := h.queue.Enqueue(recipient, "[TEST] "+msg.Subject, msg.HTMLBody); err != nil {
			h.logger.Warn("Failed to queue test alert email",
				zap.String("recipient", recipient),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	if queued == 0 {
		writeJSON(w, http.StatusServiceUnavailable, Fail("email queue is full"))
		return
	}
	writeJSON(w, http.StatusAccepted, Ok(map[string]any{"queued": queued}))
}
