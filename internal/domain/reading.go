package domain

// ReadingStatus 读数分类结果（写入时由评估器确定，之后不再重算）
type ReadingStatus string

const (
	ReadingNormal   ReadingStatus = "normal"
	ReadingWarning  ReadingStatus = "warning"
	ReadingCritical ReadingStatus = "critical"
)

// ValidReadingStatus 校验读数状态值是否合法
func ValidReadingStatus(s ReadingStatus) bool {
	switch s {
	case ReadingNormal, ReadingWarning, ReadingCritical:
		return true
	}
	return false
}

// HeartRateReading 心率读数（对应 heart_rate_readings 表）
// 每个患者 append-only，记录后不可变
type HeartRateReading struct {
	Value     int64         `json:"value" db:"value"`         // bpm
	Timestamp uint64        `json:"timestamp" db:"recorded_at"` // ns since epoch
	Status    ReadingStatus `json:"status" db:"status"`
}

// Thresholds 正常心率区间 [Low, High]（由监测客户端持有并随读数传入，核心层不持久化）
type Thresholds struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}
