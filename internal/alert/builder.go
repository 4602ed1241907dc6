package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

// Message 一个告警周期渲染出的邮件内容（所有收件人共用同一封）
type Message struct {
	Subject  string
	HTMLBody string
}

const (
	timeFormatFull  = "02/01/2006 15:04:05"
	timeFormatShort = "02/01 15:04:05"
)

// BuildMessage 把本周期的全部超限记录渲染成一封自包含的告警邮件
// 主题携带超限位置数和检查时间；正文逐行列出位置、两项读数、两项状态和读数时间，
// 并附上当前配置的阈值，收件人无需打开 dashboard 即可处置
func BuildMessage(breaches []domain.BreachRecord, cfg *config.AlertConfig) Message {
	now := time.Now()

	subject := fmt.Sprintf("[EnviroMonitor] Environment alert - %d locations out of range (%s)",
		len(breaches), now.Format(timeFormatFull))

	var rows strings.Builder
	for i, b := range breaches {
		rows.WriteString(buildRow(i+1, &b))
	}

	var body strings.Builder
	body.WriteString(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="margin:0;padding:0;background:#f3f4f6;font-family:Segoe UI,Tahoma,sans-serif;">
<div style="max-width:900px;margin:0 auto;padding:24px;">
  <div style="background:linear-gradient(135deg,#dc2626,#f97316);border-radius:16px 16px 0 0;padding:32px;text-align:center;">
    <h1 style="margin:0;color:#fff;font-size:24px;">ENVIRONMENT ALERT</h1>
    <p style="margin:8px 0 0;color:rgba(255,255,255,.9);font-size:14px;">EnviroMonitor detected locations outside the configured safe range</p>
  </div>
  <div style="background:#fff;padding:24px 32px;border-bottom:1px solid #e5e7eb;">
    <span style="font-size:13px;color:#6b7280;">Checked at:</span>
    <strong style="color:#1f2937;margin-left:8px;">` + now.Format(timeFormatFull) + `</strong>
    <span style="float:right;padding:6px 16px;border-radius:20px;background:#fef2f2;color:#dc2626;font-weight:700;font-size:14px;">` +
		fmt.Sprintf("%d locations", len(breaches)) + `</span>
  </div>
  <div style="background:#fff;">
    <table style="width:100%;border-collapse:collapse;" cellpadding="0" cellspacing="0">
      <thead>
        <tr style="background:#f8fafc;">
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">#</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:left;border-bottom:2px solid #e5e7eb;">Location code</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:left;border-bottom:2px solid #e5e7eb;">Location name</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">Temperature</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">Status</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">Humidity</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">Status</th>
          <th style="padding:14px 16px;font-size:12px;color:#6b7280;text-align:center;border-bottom:2px solid #e5e7eb;">Measured at</th>
        </tr>
      </thead>
      <tbody>` + rows.String() + `</tbody>
    </table>
  </div>
  <div style="background:#fffbeb;padding:20px 32px;border-top:1px solid #fde68a;">
    <p style="margin:0 0 8px;font-size:13px;font-weight:700;color:#92400e;">Configured safe thresholds:</p>
    <span style="font-size:13px;color:#78350f;">Temperature: <strong>` +
		fmt.Sprintf("%.1f°C - %.1f°C", cfg.TempMin, cfg.TempMax) + `</strong></span>
    <span style="font-size:13px;color:#78350f;margin-left:24px;">Humidity: <strong>` +
		fmt.Sprintf("%.1f%% - %.1f%%", cfg.HumMin, cfg.HumMax) + `</strong></span>
  </div>
  <div style="background:#1f2937;border-radius:0 0 16px 16px;padding:24px 32px;text-align:center;">
    <p style="margin:0;font-size:12px;color:#9ca3af;">This email was sent automatically by <strong style="color:#60a5fa;">EnviroMonitor</strong>. Do not reply.</p>
  </div>
</div>
</body>
</html>`)

	return Message{Subject: subject, HTMLBody: body.String()}
}

// buildRow 渲染单条超限记录
func buildRow(index int, b *domain.BreachRecord) string {
	name := "-"
	if b.LocationName != nil && *b.LocationName != "" {
		name = *b.LocationName
	}
	measuredAt := "-"
	if b.LogDate != nil {
		measuredAt = b.LogDate.Format(timeFormatShort)
	}

	return fmt.Sprintf(`
      <tr style="border-bottom:1px solid #e5e7eb;">
        <td style="padding:12px 16px;font-size:14px;color:#374151;text-align:center;">%d</td>
        <td style="padding:12px 16px;font-size:14px;font-weight:600;color:#1f2937;">%s</td>
        <td style="padding:12px 16px;font-size:14px;color:#374151;">%s</td>
        <td style="padding:12px 16px;font-size:14px;font-weight:700;color:%s;text-align:center;">%s</td>
        <td style="padding:12px 16px;font-size:12px;text-align:center;">%s</td>
        <td style="padding:12px 16px;font-size:14px;font-weight:700;color:%s;text-align:center;">%s</td>
        <td style="padding:12px 16px;font-size:12px;text-align:center;">%s</td>
        <td style="padding:12px 16px;font-size:13px;color:#6b7280;text-align:center;">%s</td>
      </tr>`,
		index,
		b.LocationCode,
		name,
		statusColor(b.TemperatureStatus), formatValue(b.Temperature, "°C"),
		statusBadge(b.TemperatureStatus),
		statusColor(b.HumidityStatus), formatValue(b.Humidity, "%"),
		statusBadge(b.HumidityStatus),
		measuredAt,
	)
}

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}

func statusColor(s domain.Status) string {
	if s == domain.StatusNormal {
		return "#16a34a"
	}
	return "#dc2626"
}

func statusBadge(s domain.Status) string {
	var label, bg, color string
	switch s {
	case domain.StatusHigh:
		label, bg, color = "Above max", "#fef2f2", "#dc2626"
	case domain.StatusLow:
		label, bg, color = "Below min", "#eff6ff", "#2563eb"
	default:
		label, bg, color = "Normal", "#f0fdf4", "#16a34a"
	}
	return fmt.Sprintf(`<span style="display:inline-block;padding:4px 10px;border-radius:20px;background:%s;color:%s;font-weight:600;">%s</span>`,
		bg, color, label)
}
