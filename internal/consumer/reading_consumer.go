package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/mqtt"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
)

// ReadingConsumer 传感器网关读数消费者（可选，MQTT_ENABLED=true 时启用）
// 网关把读数以 JSON 发布到配置的主题，这里解析后写入 tlog
type ReadingConsumer struct {
	cfg    *config.Config
	client *mqtt.Client
	repo   repository.ReadingsRepository
	logger *zap.Logger
}

// gatewayMessage 网关消息格式（字段名与 tlog 列一致）
type gatewayMessage struct {
	LocationCode string   `json:"logidx"`
	LocationName *string  `json:"tc_name"`
	LogDate      string   `json:"log_date"` // RFC3339；为空时取接收时间
	Temperature  *float64 `json:"value_0"`
	Humidity     *float64 `json:"value_1"`
}

// NewReadingConsumer 创建读数消费者
func NewReadingConsumer(cfg *config.Config, client *mqtt.Client, repo repository.ReadingsRepository, logger *zap.Logger) *ReadingConsumer {
	return &ReadingConsumer{
		cfg:    cfg,
		client: client,
		repo:   repo,
		logger: logger,
	}
}

// Start 订阅主题并阻塞到 ctx 取消
func (c *ReadingConsumer) Start(ctx context.Context) error {
	topic := c.cfg.MQTT.Topic
	if topic == "" {
		return fmt.Errorf("MQTT topic not configured")
	}

	if err := c.client.Subscribe(topic, c.cfg.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to reading topic: %w", err)
	}

	c.logger.Info("Reading consumer started", zap.String("topic", topic))

	<-ctx.Done()

	if err := c.client.Unsubscribe(topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("Reading consumer stopped")
	return nil
}

// handleMessage 处理一条网关消息
func (c *ReadingConsumer) handleMessage(topic string, payload []byte) error {
	var msg gatewayMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to parse gateway message: %w", err)
	}
	if msg.LocationCode == "" {
		return fmt.Errorf("gateway message missing logidx")
	}

	logDate := time.Now()
	if msg.LogDate != "" {
		t, err := time.Parse(time.RFC3339, msg.LogDate)
		if err != nil {
			return fmt.Errorf("invalid log_date %q: %w", msg.LogDate, err)
		}
		logDate = t
	}

	reading := &domain.Reading{
		LocationCode: msg.LocationCode,
		LocationName: msg.LocationName,
		LogDate:      &logDate,
		Temperature:  msg.Temperature,
		Humidity:     msg.Humidity,
	}

	if err := c.repo.InsertReading(context.Background(), reading); err != nil {
		return err
	}

	c.logger.Debug("Reading ingested",
		zap.String("logidx", msg.LocationCode),
		zap.Time("log_date", logDate),
	)
	return nil
}
