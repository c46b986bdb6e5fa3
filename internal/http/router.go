package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册账号注册/登录路由
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.HandleHandler("/auth/api/v1/register", h)
	r.HandleHandler("/auth/api/v1/login", h)
}

// RegisterAccessRoutes 注册角色管理路由
func (r *Router) RegisterAccessRoutes(h *AccessHandler) {
	r.HandleHandler("/access/api/v1/roles", h)
	r.HandleHandler("/access/api/v1/control-room", h)
	r.HandleHandler("/access/api/v1/me", h)
}

// RegisterAlertRoutes 注册报警路由（前缀匹配，子路径在 handler 内分发）
func (r *Router) RegisterAlertRoutes(h *AlertHandler) {
	r.HandleHandler("/alert/api/v1/alerts", h)
	r.HandleHandler("/alert/api/v1/alerts/", h)
}

// RegisterReadingRoutes 注册心率读数路由
func (r *Router) RegisterReadingRoutes(h *ReadingHandler) {
	r.HandleHandler("/reading/api/v1/readings", h)
	r.HandleHandler("/reading/api/v1/readings/", h)
}

// RegisterProfileRoutes 注册患者档案路由
func (r *Router) RegisterProfileRoutes(h *ProfileHandler) {
	r.HandleHandler("/profile/api/v1/me", h)
	r.HandleHandler("/profile/api/v1/me/full", h)
	r.HandleHandler("/profile/api/v1/profiles/", h)
}

// RegisterHealthRoutes 存活探针
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
