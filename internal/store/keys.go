package store

import "time"

// 缓存键布局（与控制室前端轮询路径对齐）
//   heartguard:alerts:pending            — 待处理报警快照（JSON 数组）
//   heartguard:patient:{principal}:realtime — 某患者最近一次读数（JSON）
const (
	PendingAlertsKey   = "heartguard:alerts:pending"
	PatientKeyPrefix   = "heartguard:patient:"
	RealtimeSuffix     = ":realtime"
	PendingAlertsTTL   = 30 * time.Second
	RealtimeReadingTTL = 5 * time.Minute
)

// RealtimeKey 最近读数的缓存键
func RealtimeKey(principal string) string {
	return PatientKeyPrefix + principal + RealtimeSuffix
}
