package httpapi

import (
	"net/http"
	"strings"
	"time"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/service"

	"go.uber.org/zap"
)

// AlertHandler 报警台账（创建 / 待处理队列 / 详情 / 状态转移 / 历史导出）
type AlertHandler struct {
	alerts   service.AlertService
	identity *IdentityResolver
	logger   *zap.Logger
}

func NewAlertHandler(alerts service.AlertService, identity *IdentityResolver, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口（前缀路由，兼容 /alerts/{id} 形式）
func (h *AlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const base = "/alert/api/v1/alerts"
	path := r.URL.Path

	switch {
	case path == base:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Create(w, r)
	case path == base+"/pending":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Pending(w, r)
	case path == base+"/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, r)
	case strings.HasPrefix(path, base+"/patient/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ByPatient(w, r, strings.TrimPrefix(path, base+"/patient/"))
	case strings.HasPrefix(path, base+"/") && strings.HasSuffix(path, "/status"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, base+"/"), "/status")
		h.UpdateStatus(w, r, id)
	case strings.HasPrefix(path, base+"/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Details(w, r, strings.TrimPrefix(path, base+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Create 患者本人创建报警（SOS 按钮 → manual）
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var req struct {
		Type     string `json:"type"`
		Severity string `json:"severity"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	id, err := h.alerts.CreateEmergencyAlert(r.Context(), caller, domain.AlertType(req.Type), domain.AlertSeverity(req.Severity))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
}

// Pending 待处理队列（控制室面板轮询）
func (h *AlertHandler) Pending(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	pending, err := h.alerts.GetPendingAlerts(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pending))
}

// Details 报警详情
func (h *AlertHandler) Details(w http.ResponseWriter, r *http.Request, rawID string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	id, err := parseUint(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid alert id"))
		return
	}

	alert, err := h.alerts.GetAlertDetails(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alert))
}

// UpdateStatus 状态转移（acknowledged / dispatched / resolved）
func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, rawID string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	id, err := parseUint(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid alert id"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.alerts.UpdateAlertStatus(r.Context(), caller, id, domain.AlertStatus(req.Status)); err != nil {
		h.logger.Warn("Alert status update rejected",
			zap.Uint64("alert_id", id),
			zap.String("caller", string(caller)),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// ByPatient 某患者的报警历史
func (h *AlertHandler) ByPatient(w http.ResponseWriter, r *http.Request, rawPatient string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}
	if rawPatient == "" || strings.Contains(rawPatient, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	alerts, err := h.alerts.GetAlertsForPatient(r.Context(), caller, domain.Principal(rawPatient))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// Export 报警历史导出为 Excel（控制室审计用）
func (h *AlertHandler) Export(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	history, err := h.alerts.ListAlertHistory(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := GenerateAlertHistoryExport(history)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := "alert-history-" + time.Now().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
