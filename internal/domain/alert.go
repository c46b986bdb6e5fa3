package domain

// AlertStatus 报警生命周期状态（闭集）
// 状态机全序：newAlert → acknowledged → dispatched → resolved
// 只允许前进（可以跳级），等于或回退返回 ErrInvalidTransition
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "newAlert"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusDispatched   AlertStatus = "dispatched"
	AlertStatusResolved     AlertStatus = "resolved"
)

// AlertType 报警类型（automatic = 监测管线触发，manual = 患者SOS）
type AlertType string

const (
	AlertTypeAutomatic AlertType = "automatic"
	AlertTypeManual    AlertType = "manual"
)

// AlertSeverity 报警级别（闭集）
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// statusRank 状态机全序的秩（用于前进性检查）
var statusRank = map[AlertStatus]int{
	AlertStatusNew:          0,
	AlertStatusAcknowledged: 1,
	AlertStatusDispatched:   2,
	AlertStatusResolved:     3,
}

// ValidAlertStatus 校验状态值是否合法
func ValidAlertStatus(s AlertStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// ValidAlertType 校验类型值是否合法
func ValidAlertType(t AlertType) bool {
	return t == AlertTypeAutomatic || t == AlertTypeManual
}

// ValidSeverity 校验级别值是否合法
func ValidSeverity(s AlertSeverity) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// CanTransition 检查 from → to 是否是合法的前进转移
// resolved 是终态：之后任何 updateAlertStatus 都失败
func CanTransition(from, to AlertStatus) bool {
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	if !ok1 || !ok2 {
		return false
	}
	return tr > fr
}

// EmergencyAlert 紧急报警（对应 emergency_alerts 表）
// 创建后只通过状态转移修改，不删除（审计需要）
type EmergencyAlert struct {
	ID        uint64        `json:"id" db:"alert_id"`
	Patient   Principal     `json:"patient" db:"patient"`
	Type      AlertType     `json:"type" db:"alert_type"`
	Severity  AlertSeverity `json:"severity" db:"severity"`
	Status    AlertStatus   `json:"status" db:"status"`
	Timestamp uint64        `json:"timestamp" db:"triggered_at"` // 创建时间（ns since epoch），不可变
}
