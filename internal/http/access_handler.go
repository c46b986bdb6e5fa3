package httpapi

import (
	"net/http"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/service"

	"go.uber.org/zap"
)

// AccessHandler 角色管理与能力查询
type AccessHandler struct {
	access   service.AccessService
	identity *IdentityResolver
	logger   *zap.Logger
}

func NewAccessHandler(access service.AccessService, identity *IdentityResolver, logger *zap.Logger) *AccessHandler {
	return &AccessHandler{access: access, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/access/api/v1/roles":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.AssignRole(w, r)
	case "/access/api/v1/control-room":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.AddControlRoomUser(w, r)
	case "/access/api/v1/me":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Me(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// AssignRole 给指定 principal 赋角色（admin，或系统首次使用时的 bootstrap）
func (h *AccessHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var req struct {
		Principal string `json:"principal"`
		Role      string `json:"role"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.access.AssignUserRole(r.Context(), caller, domain.Principal(req.Principal), domain.Role(req.Role))
	if err != nil {
		h.logger.Warn("Assign role rejected",
			zap.String("caller", string(caller)),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// AddControlRoomUser 把 principal 加入控制室（admin 专用，幂等）
func (h *AccessHandler) AddControlRoomUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var req struct {
		Principal string `json:"principal"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.access.AddControlRoomUser(r.Context(), caller, domain.Principal(req.Principal))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// Me 调用者的角色与能力（前端据此决定进控制室还是患者面板）
func (h *AccessHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	role, err := h.access.CallerRole(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	isControlRoom, err := h.access.IsControlRoomUser(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"principal":         caller,
		"role":              role,
		"isAdmin":           role == domain.RoleAdmin,
		"isControlRoomUser": isControlRoom,
	}))
}
