package policy

import (
	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

// 阈值分类（纯函数，无状态）
// 边界值属于安全区间：value == TempMax / TempMin 判为 normal
// nil 读数判为 normal：传感器无数据不应触发告警（刻意设计，不是疏漏）

// ClassifyTemperature 温度分类
func ClassifyTemperature(value *float64, cfg *config.AlertConfig) domain.Status {
	if value == nil {
		return domain.StatusNormal
	}
	if *value > cfg.TempMax {
		return domain.StatusHigh
	}
	if *value < cfg.TempMin {
		return domain.StatusLow
	}
	return domain.StatusNormal
}

// ClassifyHumidity 湿度分类
func ClassifyHumidity(value *float64, cfg *config.AlertConfig) domain.Status {
	if value == nil {
		return domain.StatusNormal
	}
	if *value > cfg.HumMax {
		return domain.StatusHigh
	}
	if *value < cfg.HumMin {
		return domain.StatusLow
	}
	return domain.StatusNormal
}

// IsBreach 任一分类非 normal 即为超限
func IsBreach(r *domain.Reading, cfg *config.AlertConfig) bool {
	return ClassifyTemperature(r.Temperature, cfg) != domain.StatusNormal ||
		ClassifyHumidity(r.Humidity, cfg) != domain.StatusNormal
}
