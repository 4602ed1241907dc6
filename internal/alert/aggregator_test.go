package alert

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
)

// fakeReadingsRepo 记录调用次数的 ReadingsRepository 桩
type fakeReadingsRepo struct {
	readings    []domain.Reading
	err         error
	latestCalls atomic.Int32
}

func (f *fakeReadingsRepo) GetLatestReadings(ctx context.Context, prefix string) ([]domain.Reading, error) {
	f.latestCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.readings, nil
}

func (f *fakeReadingsRepo) GetReadingsInRange(ctx context.Context, code string, start, end time.Time) ([]domain.Reading, error) {
	return nil, nil
}

func (f *fakeReadingsRepo) InsertReading(ctx context.Context, r *domain.Reading) error {
	return nil
}

func reading(code string, temp, hum float64, at time.Time) domain.Reading {
	return domain.Reading{
		LocationCode: code,
		Temperature:  &temp,
		Humidity:     &hum,
		LogDate:      &at,
	}
}

func newTestAggregator(repo repository.ReadingsRepository, fm *fakeMailer) *Aggregator {
	return NewAggregator(repo, NewDispatcher(fm, zap.NewNop()), nil, zap.NewNop())
}

func TestRunCycle_DisabledNeverTouchesStoreOrDispatcher(t *testing.T) {
	repo := &fakeReadingsRepo{}
	fm := &fakeMailer{}
	agg := newTestAggregator(repo, fm)

	cfg := testAlertConfig()
	cfg.Enabled = false

	result, err := agg.RunCycle(context.Background(), cfg)

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, int32(0), repo.latestCalls.Load())
	assert.Empty(t, fm.sentTo())
}

func TestRunCycle_NoRecipientsSkips(t *testing.T) {
	repo := &fakeReadingsRepo{}
	agg := newTestAggregator(repo, &fakeMailer{})

	cfg := testAlertConfig()
	cfg.Recipients = nil

	result, err := agg.RunCycle(context.Background(), cfg)

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, int32(0), repo.latestCalls.Load())
}

func TestRunCycle_StorageFailureAbortsWithoutDispatch(t *testing.T) {
	repo := &fakeReadingsRepo{err: repository.ErrStorageUnavailable}
	fm := &fakeMailer{}
	agg := newTestAggregator(repo, fm)

	result, err := agg.RunCycle(context.Background(), testAlertConfig())

	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrStorageUnavailable))
	assert.Empty(t, result.Breaches)
	assert.Empty(t, fm.sentTo())
}

func TestRunCycle_NoDataSkips(t *testing.T) {
	agg := newTestAggregator(&fakeReadingsRepo{}, &fakeMailer{})

	result, err := agg.RunCycle(context.Background(), testAlertConfig())

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.Breaches)
}

func TestRunCycle_AllNominalNeverInvokesDispatcher(t *testing.T) {
	now := time.Now()
	repo := &fakeReadingsRepo{readings: []domain.Reading{
		reading("L1", 24, 50, now),
		reading("L2", 20, 55, now),
	}}
	fm := &fakeMailer{}
	agg := newTestAggregator(repo, fm)

	result, err := agg.RunCycle(context.Background(), testAlertConfig())

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.Breaches)
	assert.Empty(t, fm.sentTo())
}

func TestRunCycle_SingleBreachEndToEnd(t *testing.T) {
	// 规格场景：{tempMin:18, tempMax:28}，读数 {L1, temp:30, hum:50}
	now := time.Now()
	repo := &fakeReadingsRepo{readings: []domain.Reading{reading("L1", 30, 50, now)}}
	fm := &fakeMailer{}
	agg := newTestAggregator(repo, fm)

	cfg := testAlertConfig()
	cfg.Recipients = []string{"a@x.com"}

	result, err := agg.RunCycle(context.Background(), cfg)

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	require.Len(t, result.Breaches, 1)
	assert.Equal(t, "L1", result.Breaches[0].LocationCode)
	assert.Equal(t, domain.StatusHigh, result.Breaches[0].TemperatureStatus)
	assert.Equal(t, domain.StatusNormal, result.Breaches[0].HumidityStatus)

	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Succeeded)
	assert.Equal(t, []string{"a@x.com"}, fm.sentTo())
}

func TestRunCycle_MixedReadingsCollectOnlyBreaches(t *testing.T) {
	now := time.Now()
	repo := &fakeReadingsRepo{readings: []domain.Reading{
		reading("L1", 24, 50, now), // 正常
		reading("L2", 17, 50, now), // 温度偏低
		reading("L3", 24, 65, now), // 湿度偏高
	}}
	fm := &fakeMailer{}
	agg := newTestAggregator(repo, fm)

	result, err := agg.RunCycle(context.Background(), testAlertConfig())

	require.NoError(t, err)
	require.Len(t, result.Breaches, 2)
	assert.Equal(t, "L2", result.Breaches[0].LocationCode)
	assert.Equal(t, domain.StatusLow, result.Breaches[0].TemperatureStatus)
	assert.Equal(t, "L3", result.Breaches[1].LocationCode)
	assert.Equal(t, domain.StatusHigh, result.Breaches[1].HumidityStatus)
}

// recordingNotifier 记录第二通道调用
type recordingNotifier struct {
	calls atomic.Int32
	err   error
}

func (r *recordingNotifier) Notify(ctx context.Context, breaches []domain.BreachRecord, cfg *config.AlertConfig) error {
	r.calls.Add(1)
	return r.err
}

func TestRunCycle_WebhookFailureDoesNotFailCycle(t *testing.T) {
	now := time.Now()
	repo := &fakeReadingsRepo{readings: []domain.Reading{reading("L1", 30, 50, now)}}
	fm := &fakeMailer{}
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	agg := NewAggregator(repo, NewDispatcher(fm, zap.NewNop()), notifier, zap.NewNop())

	result, err := agg.RunCycle(context.Background(), testAlertConfig())

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, int32(1), notifier.calls.Load())
	// 邮件照常送达
	assert.Equal(t, []string{"ops@x.com"}, fm.sentTo())
}
