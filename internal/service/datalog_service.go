package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
	"github.com/trancuong31/EnviroMonitor/internal/store"
)

const latestCachePrefix = "enviromon:latest:"

// DataLogService 读数查询服务
// 最新读数走一层短 TTL 的 Redis 缓存（dashboard 轮询频繁）；
// 缓存故障降级为直接查库，绝不让缓存问题影响请求
type DataLogService struct {
	repo     repository.ReadingsRepository
	kv       store.KV // 可为 nil（禁用缓存）
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDataLogService 创建读数查询服务
func NewDataLogService(repo repository.ReadingsRepository, kv store.KV, cacheTTL time.Duration, logger *zap.Logger) *DataLogService {
	return &DataLogService{
		repo:     repo,
		kv:       kv,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetLogs 每个位置的最新读数（可按 tc_name 前缀过滤）
func (s *DataLogService) GetLogs(ctx context.Context, locationPrefix string) ([]domain.Reading, error) {
	cacheKey := latestCachePrefix + locationPrefix

	if s.kv != nil {
		if cached, err := s.kv.Get(ctx, cacheKey); err == nil {
			var readings []domain.Reading
			if err := json.Unmarshal([]byte(cached), &readings); err == nil {
				return readings, nil
			}
			// 缓存内容损坏：忽略，走库并覆盖
		} else if err != store.ErrMiss {
			s.logger.Warn("Latest readings cache unavailable, falling back to store", zap.Error(err))
		}
	}

	readings, err := s.repo.GetLatestReadings(ctx, locationPrefix)
	if err != nil {
		return nil, err
	}

	if s.kv != nil {
		if data, err := json.Marshal(readings); err == nil {
			if err := s.kv.Set(ctx, cacheKey, string(data), s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache latest readings", zap.Error(err))
			}
		}
	}

	return readings, nil
}

// GetLogsByDateRange 单个位置的时间区间序列
func (s *DataLogService) GetLogsByDateRange(ctx context.Context, locationCode string, start, end time.Time) ([]domain.Reading, error) {
	return s.repo.GetReadingsInRange(ctx, locationCode, start, end)
}
