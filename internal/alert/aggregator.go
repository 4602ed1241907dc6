package alert

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/policy"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
)

// Notifier 可选的第二告警通道（webhook 等），失败只记日志
type Notifier interface {
	Notify(ctx context.Context, breaches []domain.BreachRecord, cfg *config.AlertConfig) error
}

// CycleResult 一次评估周期的结果
// Skipped 为 true 的周期是记录在案的 no-op：禁用、无收件人、无数据或全部正常
type CycleResult struct {
	CycleID  string
	Breaches []domain.BreachRecord
	Outcomes []domain.DeliveryOutcome
	Skipped  bool
}

// Aggregator 告警评估聚合器
// 每个周期：拉取最新读数 → 逐位置分类 → 收集超限 → 交给投递器
// 周期内的所有失败都在周期边界记录日志，绝不向上抛到宿主进程
type Aggregator struct {
	repo       repository.ReadingsRepository
	dispatcher *Dispatcher
	notifier   Notifier // 可为 nil
	logger     *zap.Logger
}

// NewAggregator 创建聚合器（notifier 传 nil 表示不启用第二通道）
func NewAggregator(repo repository.ReadingsRepository, dispatcher *Dispatcher, notifier Notifier, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		repo:       repo,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RunCycle 执行一次评估周期
// 返回的 error 仅在存储不可达时非 nil；调度器只记录、不崩溃
// 相同的读数集和配置产生相同的分类结果（无隐藏状态）
func (a *Aggregator) RunCycle(ctx context.Context, cfg *config.AlertConfig) (CycleResult, error) {
	result := CycleResult{CycleID: uuid.New().String()}
	log := a.logger.With(zap.String("cycle_id", result.CycleID))

	// 入口条件：禁用或无收件人时是记录在案的 no-op，不是错误
	if !cfg.Enabled {
		log.Info("Alert system is disabled, skipping check")
		result.Skipped = true
		return result, nil
	}
	if len(cfg.Recipients) == 0 {
		log.Warn("No alert recipients configured, skipping check")
		result.Skipped = true
		return result, nil
	}

	log.Info("Starting environment check")

	// Fetching
	readings, err := a.repo.GetLatestReadings(ctx, "")
	if err != nil {
		// Failed 终态：记录日志后把错误交还调度器（调度器只记录，不中断进程）
		log.Error("Failed to fetch latest readings, cycle aborted", zap.Error(err))
		return result, err
	}

	if len(readings) == 0 {
		log.Info("No sensor data found, skipping")
		result.Skipped = true
		return result, nil
	}

	// Evaluating
	for i := range readings {
		r := &readings[i]
		tempStatus := policy.ClassifyTemperature(r.Temperature, cfg)
		humStatus := policy.ClassifyHumidity(r.Humidity, cfg)
		if tempStatus == domain.StatusNormal && humStatus == domain.StatusNormal {
			continue
		}
		result.Breaches = append(result.Breaches, domain.BreachRecord{
			LocationCode:      r.LocationCode,
			LocationName:      r.LocationName,
			Temperature:       r.Temperature,
			Humidity:          r.Humidity,
			LogDate:           r.LogDate,
			TemperatureStatus: tempStatus,
			HumidityStatus:    humStatus,
		})
	}

	// 常态快路径：全部正常，不触碰投递器
	if len(result.Breaches) == 0 {
		log.Info("All locations within safe thresholds",
			zap.Int("location_count", len(readings)),
		)
		result.Skipped = true
		return result, nil
	}

	// Notifying
	log.Warn("Locations exceeding thresholds, sending alerts",
		zap.Int("breach_count", len(result.Breaches)),
		zap.Int("recipient_count", len(cfg.Recipients)),
	)

	msg := BuildMessage(result.Breaches, cfg)
	result.Outcomes = a.dispatcher.Dispatch(ctx, msg, cfg.Recipients)

	succeeded := 0
	for _, o := range result.Outcomes {
		if o.Succeeded {
			succeeded++
		}
	}
	log.Info("Alert cycle completed",
		zap.Int("breach_count", len(result.Breaches)),
		zap.Int("delivered", succeeded),
		zap.Int("failed", len(result.Outcomes)-succeeded),
	)

	// 第二通道（可选，尽力而为）
	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, result.Breaches, cfg); err != nil {
			log.Error("Failed to deliver webhook notification", zap.Error(err))
		}
	}

	return result, nil
}
