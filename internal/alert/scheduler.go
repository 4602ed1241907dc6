package alert

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
)

// CycleRunner 调度器驱动的周期执行接口（Aggregator 实现）
type CycleRunner interface {
	RunCycle(ctx context.Context, cfg *config.AlertConfig) (CycleResult, error)
}

// Scheduler 告警调度器
// 显式持有自己的 ticker（而非进程级单例），由注入的 runner + 配置构造，
// 便于测试中独立启停。周期配置在运行期间只读：改阈值/收件人需重启
type Scheduler struct {
	runner CycleRunner
	cfg    *config.AlertConfig
	logger *zap.Logger

	inFlight atomic.Bool // 非重入保护：上个周期未结束时跳过本次触发
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewScheduler 创建调度器
func NewScheduler(runner CycleRunner, cfg *config.AlertConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start 启动调度：先同步跑一次（告警不必等满一个间隔），再按固定节奏触发
// 告警禁用时记录日志直接返回，不注册任何定时器
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("Alert scheduler not started: alert system is disabled")
		close(s.doneCh)
		return
	}

	s.logger.Info("Alert scheduler started",
		zap.Duration("check_interval", s.cfg.CheckInterval),
		zap.Strings("recipients", s.cfg.Recipients),
		zap.Float64("temp_min", s.cfg.TempMin),
		zap.Float64("temp_max", s.cfg.TempMax),
		zap.Float64("hum_min", s.cfg.HumMin),
		zap.Float64("hum_max", s.cfg.HumMax),
	)

	// 启动时立即检查一次
	s.runGuarded(ctx)

	go s.loop(ctx)
}

// Stop 停止后续触发；进行中的周期允许跑完（避免发出残缺的通知批次）
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// loop 定时循环
func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Alert scheduler stopped")
			return
		case <-s.stopCh:
			s.logger.Info("Alert scheduler stopped")
			return
		case <-ticker.C:
			s.logger.Info("Scheduled check triggered")
			s.runGuarded(ctx)
		}
	}
}

// runGuarded 带非重入保护执行一个周期
// 两个并发周期可能对同一超限重复发信，所以上个周期未结束时直接跳过本次触发
func (s *Scheduler) runGuarded(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Previous alert cycle still in flight, skipping this trigger")
		return
	}
	defer s.inFlight.Store(false)

	if _, err := s.runner.RunCycle(ctx, s.cfg); err != nil {
		// 周期失败只记录；调度器要无人值守长期运行，单个坏周期不能终止进程
		s.logger.Error("Alert cycle failed", zap.Error(err))
	}
}
