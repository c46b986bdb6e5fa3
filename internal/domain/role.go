package domain

// Principal 调用者身份（不透明 token，仅做相等比较）
// 来自认证层（bearer token 解析），核心层不解释其内部结构
type Principal string

// Role 角色枚举（闭集，单角色模型：一个 Principal 同时只有一个角色）
// "admin 隐含 controlRoomUser" 通过授权谓词的 OR 表达，不做角色继承
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleControlRoom Role = "controlRoomUser"
	RoleUser        Role = "user"
)

// ValidRole 校验角色值是否合法
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleControlRoom, RoleUser:
		return true
	}
	return false
}

// RoleRecord 角色记录（对应 roles 表）
type RoleRecord struct {
	Principal Principal `json:"principal" db:"principal"`
	Role      Role      `json:"role" db:"role"`
}
