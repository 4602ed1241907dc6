package domain

import "time"

// Reading tlog表的一条传感器读数（只读）
// JSON 字段名与前端 dashboard 约定保持一致（logidx/tc_name/log_date/value_0/value_1）
type Reading struct {
	ID           int64      `json:"id"`
	LocationCode string     `json:"logidx"`  // 位置编码（最长14字符）
	LocationName *string    `json:"tc_name"` // 位置名称，前缀用于分组到厂区
	LogDate      *time.Time `json:"log_date"`
	Temperature  *float64   `json:"value_0"` // 温度（°C）
	Humidity     *float64   `json:"value_1"` // 湿度（%）
}

// LocationLabel 返回位置名称（为空时回退到位置编码）
func (r *Reading) LocationLabel() string {
	if r.LocationName != nil && *r.LocationName != "" {
		return *r.LocationName
	}
	return r.LocationCode
}
