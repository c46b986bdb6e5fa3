package domain

import "errors"

// 错误分类（与前端错误码映射保持一致）
// Service/Repository 层统一返回这些哨兵错误（用 fmt.Errorf + %w 包装），
// Handler 层用 errors.Is 翻译为 HTTP 响应。
var (
	// ErrUnauthorized 调用者缺少所需角色或数据所有权
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound 引用的报警/档案不存在
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition 报警状态回退（状态机只允许前进）
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidInput 非法的角色/类型/级别值、负数年龄等
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageFault 底层存储不可用（直接上报，核心层不重试）
	ErrStorageFault = errors.New("storage fault")
)
