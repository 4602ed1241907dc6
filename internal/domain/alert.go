package domain

import "time"

// Status 阈值分类结果
type Status string

const (
	StatusNormal Status = "normal"
	StatusHigh   Status = "high"
	StatusLow    Status = "low"
)

// BreachRecord 一次评估周期内产生的超限记录（周期结束后即丢弃，不落库）
type BreachRecord struct {
	LocationCode      string     `json:"logidx"`
	LocationName      *string    `json:"tc_name"`
	Temperature       *float64   `json:"value_0"`
	Humidity          *float64   `json:"value_1"`
	LogDate           *time.Time `json:"log_date"`
	TemperatureStatus Status     `json:"temp_status"`
	HumidityStatus    Status     `json:"hum_status"`
}

// DeliveryOutcome 单个收件人的投递结果（仅在一次发送操作内有效）
type DeliveryOutcome struct {
	Recipient    string `json:"recipient"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"error_message,omitempty"`
}
