package httpapi

import (
	"net/http"
	"strings"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/service"

	"go.uber.org/zap"
)

// ReadingHandler 心率读数上报与查询
type ReadingHandler struct {
	readings service.ReadingService
	identity *IdentityResolver
	logger   *zap.Logger
}

func NewReadingHandler(readings service.ReadingService, identity *IdentityResolver, logger *zap.Logger) *ReadingHandler {
	return &ReadingHandler{readings: readings, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const base = "/reading/api/v1/readings"
	path := r.URL.Path

	switch {
	case path == base:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Add(w, r)
	case strings.HasPrefix(path, base+"/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, r, strings.TrimPrefix(path, base+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Add 调用者本人上报一条读数（阈值随读数传入）
func (h *ReadingHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var req struct {
		Value      int64  `json:"value"`
		Timestamp  uint64 `json:"timestamp"`
		Thresholds struct {
			Low  int64 `json:"low"`
			High int64 `json:"high"`
		} `json:"thresholds"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	reading, err := h.readings.AddHeartRateReading(r.Context(), caller, req.Value, req.Timestamp,
		domain.Thresholds{Low: req.Thresholds.Low, High: req.Thresholds.High})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reading))
}

// List 某患者的历史读数（本人或控制室）
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request, rawPatient string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}
	if rawPatient == "" || strings.Contains(rawPatient, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	readings, err := h.readings.GetHeartRateReadings(r.Context(), caller, domain.Principal(rawPatient))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(readings))
}
