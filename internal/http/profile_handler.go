package httpapi

import (
	"net/http"
	"strings"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/service"

	"go.uber.org/zap"
)

// ProfileHandler 患者档案（本体 / 联系人 / 病情备注）
type ProfileHandler struct {
	profiles service.ProfileService
	identity *IdentityResolver
	logger   *zap.Logger
}

func NewProfileHandler(profiles service.ProfileService, identity *IdentityResolver, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const base = "/profile/api/v1"
	path := r.URL.Path

	switch {
	case path == base+"/me":
		switch r.Method {
		case http.MethodGet:
			h.GetMine(w, r)
		case http.MethodPost:
			h.SaveMine(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == base+"/me/full":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SaveMineFull(w, r)
	case strings.HasPrefix(path, base+"/profiles/") && strings.HasSuffix(path, "/full"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		patient := strings.TrimSuffix(strings.TrimPrefix(path, base+"/profiles/"), "/full")
		h.GetFull(w, r, patient)
	case strings.HasPrefix(path, base+"/profiles/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Get(w, r, strings.TrimPrefix(path, base+"/profiles/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// profileResponse 档案查询响应；exists=false 表示患者尚未建档
type profileResponse struct {
	Exists  bool                `json:"exists"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}

// GetMine 调用者本人的档案
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	profile, exists, err := h.profiles.GetCallerProfile(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(profileResponse{Exists: exists, Profile: profile}))
}

// SaveMine 保存调用者本人的档案本体
func (h *ProfileHandler) SaveMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var profile domain.UserProfile
	if err := readBodyJSON(r, 1<<20, &profile); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.profiles.SaveCallerProfile(r.Context(), caller, profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// SaveMineFull 整体替换本人的档案 + 联系人 + 备注
func (h *ProfileHandler) SaveMineFull(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}

	var req struct {
		Profile  domain.UserProfile        `json:"profile"`
		Contacts []domain.EmergencyContact `json:"contacts"`
		Notes    []domain.ConditionNote    `json:"notes"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.profiles.SaveCallerProfileWithContactNote(r.Context(), caller, req.Profile, req.Contacts, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// Get 某患者的档案本体（本人或控制室）
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, rawPatient string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}
	if rawPatient == "" || strings.Contains(rawPatient, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	profile, exists, err := h.profiles.GetUserProfile(r.Context(), caller, domain.Principal(rawPatient))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(profileResponse{Exists: exists, Profile: profile}))
}

// GetFull 某患者的档案 + 联系人 + 备注快照（本人或控制室）
func (h *ProfileHandler) GetFull(w http.ResponseWriter, r *http.Request, rawPatient string) {
	caller, ok := h.identity.CallerPrincipal(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return
	}
	if rawPatient == "" || strings.Contains(rawPatient, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	full, err := h.profiles.GetFullProfile(r.Context(), caller, domain.Principal(rawPatient))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(full))
}
