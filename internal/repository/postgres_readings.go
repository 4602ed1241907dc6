package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

// PostgresReadingsRepo tlog 表的 Postgres 实现
type PostgresReadingsRepo struct {
	db           *sql.DB
	maxLocations int // 最新读数查询的保护性上限（防止全表扫描失控，不是语义约束）
	logger       *zap.Logger
}

// NewPostgresReadingsRepo 创建读数仓库
func NewPostgresReadingsRepo(db *sql.DB, maxLocations int, logger *zap.Logger) *PostgresReadingsRepo {
	return &PostgresReadingsRepo{
		db:           db,
		maxLocations: maxLocations,
		logger:       logger,
	}
}

// 确保实现了接口
var _ ReadingsRepository = (*PostgresReadingsRepo)(nil)

// GetLatestReadings 每个位置取最新一条读数
// 与旧版服务保持相同的取数语义：log_date 等于该 logidx 的最大 log_date
func (r *PostgresReadingsRepo) GetLatestReadings(ctx context.Context, locationPrefix string) ([]domain.Reading, error) {
	query := `
		SELECT t.id, t.logidx, t.tc_name, t.log_date, t.value_0, t.value_1
		FROM tlog t
		WHERE t.log_date = (
			SELECT MAX(t2.log_date)
			FROM tlog t2
			WHERE t2.logidx = t.logidx
		)`

	args := []interface{}{}
	if locationPrefix != "" {
		query += ` AND t.tc_name LIKE $1 || '%'`
		args = append(args, locationPrefix)
	}
	query += fmt.Sprintf(`
		ORDER BY t.tc_name ASC NULLS LAST, t.logidx ASC
		LIMIT %d`, r.maxLocations)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query latest readings",
			zap.String("location_prefix", locationPrefix),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetReadingsInRange 单个位置的时间区间查询（双闭区间，升序）
func (r *PostgresReadingsRepo) GetReadingsInRange(ctx context.Context, locationCode string, start, end time.Time) ([]domain.Reading, error) {
	// 空区间直接返回空序列
	if start.After(end) {
		return []domain.Reading{}, nil
	}

	query := `
		SELECT id, logidx, tc_name, log_date, value_0, value_1
		FROM tlog
		WHERE logidx = $1
		  AND log_date >= $2
		  AND log_date <= $3
		ORDER BY log_date ASC`

	rows, err := r.db.QueryContext(ctx, query, locationCode, start, end)
	if err != nil {
		r.logger.Error("Failed to query readings in range",
			zap.String("logidx", locationCode),
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// InsertReading 写入一条读数（MQTT 网关接入专用）
func (r *PostgresReadingsRepo) InsertReading(ctx context.Context, reading *domain.Reading) error {
	query := `
		INSERT INTO tlog (logidx, tc_name, log_date, value_0, value_1)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		reading.LocationCode,
		reading.LocationName,
		reading.LogDate,
		reading.Temperature,
		reading.Humidity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading for %s: %w", reading.LocationCode, err)
	}
	return nil
}

// scanReadings 扫描查询结果
func scanReadings(rows *sql.Rows) ([]domain.Reading, error) {
	readings := make([]domain.Reading, 0)
	for rows.Next() {
		var rd domain.Reading
		var name sql.NullString
		var logDate sql.NullTime
		var temp, hum sql.NullFloat64

		if err := rows.Scan(&rd.ID, &rd.LocationCode, &name, &logDate, &temp, &hum); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if name.Valid {
			rd.LocationName = &name.String
		}
		if logDate.Valid {
			t := logDate.Time
			rd.LogDate = &t
		}
		if temp.Valid {
			v := temp.Float64
			rd.Temperature = &v
		}
		if hum.Valid {
			v := hum.Float64
			rd.Humidity = &v
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return readings, nil
}
