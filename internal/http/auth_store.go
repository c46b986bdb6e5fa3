package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"heartguard-alert/internal/domain"

	"github.com/google/uuid"
)

// AuthUser 账号记录（认证层内部，核心层只见 Principal）
type AuthUser struct {
	Principal    domain.Principal
	Account      string
	AccountHash  string
	PasswordHash string
}

// AuthStore is a minimal in-memory identity source.
// It resolves bearer tokens to principals; the core treats principals as
// opaque equality-comparable tokens and never sees accounts or passwords.
// Hashing rules match the monitoring frontend:
// - accountHash = sha256(lower(account))
// - passwordHash = sha256(lower(account) + ":" + password)
type AuthStore struct {
	mu       sync.RWMutex
	byHash   map[string]AuthUser         // accountHash -> user
	sessions map[string]domain.Principal // bearer token -> principal
}

func NewAuthStore() *AuthStore {
	return &AuthStore{
		byHash:   map[string]AuthUser{},
		sessions: map[string]domain.Principal{},
	}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeAccount(account string) string {
	return strings.TrimSpace(strings.ToLower(account))
}

func HashAccount(account string) string {
	return sha256Hex(normalizeAccount(account))
}

func HashAccountPassword(account, password string) string {
	return sha256Hex(normalizeAccount(account) + ":" + password)
}

// Register 注册账号；principal 为新分配的不透明 token（uuid）
// 账号已存在时返回已有 principal（幂等，方便模拟设备反复起停）
func (s *AuthStore) Register(account, password string) (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ah := HashAccount(account)
	if u, ok := s.byHash[ah]; ok {
		return u.Principal, false
	}
	u := AuthUser{
		Principal:    domain.Principal(uuid.NewString()),
		Account:      account,
		AccountHash:  ah,
		PasswordHash: HashAccountPassword(account, password),
	}
	s.byHash[ah] = u
	return u.Principal, true
}

// Login 校验账号密码并签发 bearer token
func (s *AuthStore) Login(account, password string) (token string, principal domain.Principal, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, found := s.byHash[HashAccount(account)]
	if !found || u.PasswordHash != HashAccountPassword(account, password) {
		return "", "", false
	}
	token = uuid.NewString()
	s.sessions[token] = u.Principal
	return token, u.Principal, true
}

// Resolve bearer token → principal
func (s *AuthStore) Resolve(token string) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.sessions[token]
	return p, ok
}
