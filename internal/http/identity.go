package httpapi

import (
	"net/http"
	"strings"

	"heartguard-alert/internal/domain"
)

// IdentityResolver 每个请求解析一次调用者 principal（无状态）
// 正常路径走 Authorization: Bearer <token>；
// allowHeaderPrincipal 打开时额外接受 X-Principal（本地联测 / 模拟数据源），
// 生产配置必须关闭
type IdentityResolver struct {
	store                *AuthStore
	allowHeaderPrincipal bool
}

func NewIdentityResolver(store *AuthStore, allowHeaderPrincipal bool) *IdentityResolver {
	return &IdentityResolver{
		store:                store,
		allowHeaderPrincipal: allowHeaderPrincipal,
	}
}

// CallerPrincipal 从请求解析调用者；ok=false 表示匿名
func (r *IdentityResolver) CallerPrincipal(req *http.Request) (domain.Principal, bool) {
	if auth := req.Header.Get("Authorization"); auth != "" {
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != auth && token != "" {
			if p, ok := r.store.Resolve(token); ok {
				return p, true
			}
		}
	}
	if r.allowHeaderPrincipal {
		if p := req.Header.Get("X-Principal"); p != "" {
			return domain.Principal(p), true
		}
	}
	return "", false
}
