package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config EnviroMonitor 后端配置（全部来自环境变量）
type Config struct {
	HTTP struct {
		Addr string
	}

	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
		MaxConns int
		MaxIdle  int
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Readings 读数查询配置
	Readings struct {
		MaxLocations int           // 最新读数查询的保护性上限（可配置，非正确性要求）
		CacheTTL     time.Duration // 最新读数缓存 TTL
	}

	Alert AlertConfig
	Email EmailConfig

	RateLimit struct {
		Window time.Duration
		Max    int
	}

	// MQTT 配置（用于传感器网关读数接入，默认禁用）
	MQTT struct {
		Enabled  bool
		Broker   string
		ClientID string
		Username string
		Password string
		Topic    string
		QoS      byte
	}

	Log struct {
		Level  string
		Format string
	}
}

// AlertConfig 阈值告警配置
// 周期内只读；修改阈值/收件人需要重启进程，下一周期才会生效
type AlertConfig struct {
	Enabled       bool
	TempMin       float64
	TempMax       float64
	HumMin        float64
	HumMax        float64
	Recipients    []string // 告警收件人（逗号分隔的环境变量解析而来）
	CheckInterval time.Duration
	WebhookURL    string // 可选的第二通知通道，空表示禁用
}

// EmailConfig SMTP 邮件配置
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load 加载配置并校验
// 阈值非法（min >= max）在这里拒绝，绝不允许进入调度周期后才发现
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "enviromonitor")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Readings.MaxLocations = parseInt(getEnv("READINGS_MAX_LOCATIONS", "50"), 50)
	cfg.Readings.CacheTTL = time.Duration(parseInt(getEnv("READINGS_CACHE_TTL", "30"), 30)) * time.Second

	cfg.Alert.Enabled = getEnv("ALERT_ENABLED", "false") == "true"
	cfg.Alert.TempMin = parseFloat(getEnv("ALERT_TEMP_MIN", "18"), 18)
	cfg.Alert.TempMax = parseFloat(getEnv("ALERT_TEMP_MAX", "28"), 28)
	cfg.Alert.HumMin = parseFloat(getEnv("ALERT_HUM_MIN", "40"), 40)
	cfg.Alert.HumMax = parseFloat(getEnv("ALERT_HUM_MAX", "60"), 60)
	cfg.Alert.Recipients = splitRecipients(getEnv("ALERT_EMAILS", ""))
	cfg.Alert.CheckInterval = time.Duration(parseInt(getEnv("ALERT_CHECK_INTERVAL", "60"), 60)) * time.Minute
	cfg.Alert.WebhookURL = getEnv("ALERT_WEBHOOK_URL", "")

	cfg.Email.Host = getEnv("EMAIL_HOST", "")
	cfg.Email.Port = parseInt(getEnv("EMAIL_PORT", "587"), 587)
	cfg.Email.User = getEnv("EMAIL_USER", "")
	cfg.Email.Password = getEnv("EMAIL_PASS", "")
	cfg.Email.From = getEnv("EMAIL_FROM", "noreply@enviromonitor.com")

	cfg.RateLimit.Window = time.Duration(parseInt(getEnv("RATE_LIMIT_WINDOW_MS", "900000"), 900000)) * time.Millisecond
	cfg.RateLimit.Max = parseInt(getEnv("RATE_LIMIT_MAX", "100"), 100)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "enviromon-ingest")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "enviromon/readings")
	cfg.MQTT.QoS = 1

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 配置校验（启动时执行一次）
func (c *Config) Validate() error {
	if c.Alert.TempMin >= c.Alert.TempMax {
		return fmt.Errorf("invalid alert config: ALERT_TEMP_MIN (%.1f) must be less than ALERT_TEMP_MAX (%.1f)",
			c.Alert.TempMin, c.Alert.TempMax)
	}
	if c.Alert.HumMin >= c.Alert.HumMax {
		return fmt.Errorf("invalid alert config: ALERT_HUM_MIN (%.1f) must be less than ALERT_HUM_MAX (%.1f)",
			c.Alert.HumMin, c.Alert.HumMax)
	}
	if c.Alert.CheckInterval <= 0 {
		return fmt.Errorf("invalid alert config: ALERT_CHECK_INTERVAL must be positive")
	}
	if c.Readings.MaxLocations <= 0 {
		return fmt.Errorf("invalid readings config: READINGS_MAX_LOCATIONS must be positive")
	}
	if c.Alert.Enabled && c.Email.Host == "" && len(c.Alert.Recipients) > 0 {
		return fmt.Errorf("invalid alert config: EMAIL_HOST is required when alerts are enabled")
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Database, c.Database.SSLMode)
}

// splitRecipients 解析逗号分隔的收件人列表（去空格、跳过空项）
func splitRecipients(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
