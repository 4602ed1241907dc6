package repository

import (
	"context"
	"errors"
	"time"

	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

// ErrStorageUnavailable 底层存储不可达
// 调用方不得静默重试：告警周期直接以 Failed 结束并记录日志，下一周期重新评估
var ErrStorageUnavailable = errors.New("reading storage unavailable")

// ReadingsRepository 传感器读数仓库（只读查询 + 可选的网关写入）
type ReadingsRepository interface {
	// GetLatestReadings 每个 logidx 取 log_date 最大的一条
	// locationPrefix 非空时按 tc_name 前缀过滤，结果按 tc_name 升序
	GetLatestReadings(ctx context.Context, locationPrefix string) ([]domain.Reading, error)

	// GetReadingsInRange 单个位置在 [start, end]（双闭区间）内的读数，按 log_date 升序
	// start > end 返回空序列，不是错误
	GetReadingsInRange(ctx context.Context, locationCode string, start, end time.Time) ([]domain.Reading, error)

	// InsertReading 写入一条读数（仅供 MQTT 网关接入使用）
	InsertReading(ctx context.Context, r *domain.Reading) error
}
