package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/domain"
)

func TestWebhookNotifier_PostsBreachSummary(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zap.NewNop())
	cfg := &config.AlertConfig{TempMin: 18, TempMax: 28, HumMin: 40, HumMax: 60}

	temp := 30.0
	breaches := []domain.BreachRecord{{
		LocationCode:      "F1A-TH-001",
		Temperature:       &temp,
		TemperatureStatus: domain.StatusHigh,
		HumidityStatus:    domain.StatusNormal,
	}}

	err := n.Notify(context.Background(), breaches, cfg)
	require.NoError(t, err)

	assert.Equal(t, "enviromonitor", received.Source)
	assert.Equal(t, 1, received.BreachCount)
	require.Len(t, received.Breaches, 1)
	assert.Equal(t, "F1A-TH-001", received.Breaches[0].LocationCode)
	assert.Equal(t, 28.0, received.Thresholds.TempMax)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zap.NewNop())
	err := n.Notify(context.Background(), nil, &config.AlertConfig{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
