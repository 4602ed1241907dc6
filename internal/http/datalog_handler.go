package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/repository"
	"github.com/trancuong31/EnviroMonitor/internal/service"
)

// DataLogHandler 读数查询 Handler
type DataLogHandler struct {
	dataLogs *service.DataLogService
	logger   *zap.Logger
}

// NewDataLogHandler 创建 DataLogHandler
func NewDataLogHandler(dataLogs *service.DataLogService, logger *zap.Logger) *DataLogHandler {
	return &DataLogHandler{dataLogs: dataLogs, logger: logger}
}

// GetLogs 每个位置的最新读数
// GET /dataLogs/getLogs?factory=<prefix>
func (h *DataLogHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	factory := r.URL.Query().Get("factory")

	logs, err := h.dataLogs.GetLogs(r.Context(), factory)
	if err != nil {
		h.logger.Error("GetLogs failed",
			zap.String("factory", factory),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to fetch latest readings"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"logs": logs}))
}

// GetLogsByDateRange 单个位置的时间区间序列
// GET /dataLogs/getLogsByDateRange?logidx=<code>&startDate=<ISO>&endDate=<ISO>
func (h *DataLogHandler) GetLogsByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	logidx := q.Get("logidx")
	if logidx == "" {
		writeJSON(w, http.StatusBadRequest, Fail("logidx is required"))
		return
	}

	start, err := parseISOTime(q.Get("startDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid startDate"))
		return
	}
	end, err := parseISOTime(q.Get("endDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid endDate"))
		return
	}

	logs, err := h.dataLogs.GetLogsByDateRange(r.Context(), logidx, start, end)
	if err != nil {
		if errors.Is(err, repository.ErrStorageUnavailable) {
			h.logger.Error("GetLogsByDateRange storage unavailable",
				zap.String("logidx", logidx),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, Fail("failed to fetch readings"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail("failed to fetch readings"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"logs": logs}))
}

// parseISOTime 解析 ISO 时间（支持 RFC3339 和纯日期两种写法）
func parseISOTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
