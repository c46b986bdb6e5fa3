package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler 账号注册/登录（签发 bearer token）
type AuthHandler struct {
	store  *AuthStore
	logger *zap.Logger
}

func NewAuthHandler(store *AuthStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/api/v1/register":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, r)
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type credentialsRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// Register 注册账号
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Account == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Fail("account and password are required"))
		return
	}

	principal, created := h.store.Register(req.Account, req.Password)
	if created {
		h.logger.Info("Account registered", zap.String("principal", string(principal)))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"principal": principal,
	}))
}

// Login 登录并签发 bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Account == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Fail("account and password are required"))
		return
	}

	token, principal, ok := h.store.Login(req.Account, req.Password)
	if !ok {
		h.logger.Warn("Login failed", zap.String("account_hash", HashAccount(req.Account)))
		writeJSON(w, http.StatusUnauthorized, Fail("invalid account or password"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"accessToken": token,
		"principal":   principal,
	}))
}
