package alert

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

var subjectCountRe = regexp.MustCompile(`(\d+) locations out of range`)

func testAlertConfig() *config.AlertConfig {
	return &config.AlertConfig{
		Enabled: true,
		TempMin: 18, TempMax: 28,
		HumMin: 40, HumMax: 60,
		Recipients: []string{"ops@x.com"},
	}
}

func f(v float64) *float64 { return &v }

func sampleBreaches(n int) []domain.BreachRecord {
	name := "F1A Warehouse"
	now := time.Now()
	breaches := make([]domain.BreachRecord, 0, n)
	for i := 0; i < n; i++ {
		breaches = append(breaches, domain.BreachRecord{
			LocationCode:      "F1A-TH-00" + strconv.Itoa(i+1),
			LocationName:      &name,
			Temperature:       f(30.5),
			Humidity:          f(50),
			LogDate:           &now,
			TemperatureStatus: domain.StatusHigh,
			HumidityStatus:    domain.StatusNormal,
		})
	}
	return breaches
}

func TestBuildMessage_SubjectRoundTripsBreachCount(t *testing.T) {
	for _, n := range []int{1, 3, 12} {
		msg := BuildMessage(sampleBreaches(n), testAlertConfig())

		m := subjectCountRe.FindStringSubmatch(msg.Subject)
		require.NotNil(t, m, "subject %q should contain breach count", msg.Subject)
		count, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, n, count)
	}
}

func TestBuildMessage_BodyIsSelfContained(t *testing.T) {
	breaches := sampleBreaches(2)
	msg := BuildMessage(breaches, testAlertConfig())

	// 每条超限的位置编码、名称、读数和状态都要出现
	assert.Contains(t, msg.HTMLBody, "F1A-TH-001")
	assert.Contains(t, msg.HTMLBody, "F1A-TH-002")
	assert.Contains(t, msg.HTMLBody, "F1A Warehouse")
	assert.Contains(t, msg.HTMLBody, "30.5°C")
	assert.Contains(t, msg.HTMLBody, "50.0%")
	assert.Contains(t, msg.HTMLBody, "Above max")
	assert.Contains(t, msg.HTMLBody, "Normal")

	// 阈值参考段
	assert.Contains(t, msg.HTMLBody, "18.0°C - 28.0°C")
	assert.Contains(t, msg.HTMLBody, "40.0% - 60.0%")
}

func TestBuildMessage_NilReadingsRenderDashes(t *testing.T) {
	breaches := []domain.BreachRecord{{
		LocationCode:      "F1B-TH-009",
		HumidityStatus:    domain.StatusLow,
		TemperatureStatus: domain.StatusNormal,
	}}
	msg := BuildMessage(breaches, testAlertConfig())

	assert.Contains(t, msg.HTMLBody, "F1B-TH-009")
	assert.Contains(t, msg.HTMLBody, "Below min")
	// nil 名称/读数/时间渲染为占位符而不是崩溃
	assert.Contains(t, msg.HTMLBody, ">-<")
}
