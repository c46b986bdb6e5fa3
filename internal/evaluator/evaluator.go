// Package evaluator 心率读数分类
//
// 分类是 (value, thresholds) 的纯函数：不依赖持久化，不维护状态，
// 模拟设备和真实数据管线都可以直接调用。
package evaluator

import "heartguard-alert/internal/domain"

// 硬性临界边界（bpm）
// CriticalFloor: 低于此值一律 critical（对应默认正常下限 100 的 ~40%）
// CriticalCeiling: 高于此值一律 critical
const (
	CriticalFloor   = 40
	CriticalCeiling = 140
)

// Result 单次读数的分类结果
type Result struct {
	Status   domain.ReadingStatus
	Severity domain.AlertSeverity // 建议报警级别（仅 Abnormal 时有意义）
	Abnormal bool                 // true 时监测管线应创建 automatic 报警
}

// Classify 把心率值按正常区间 [low, high] 分类
//
// 规则：
//  1. low <= v <= high           → normal，不产生报警
//  2. v 偏离区间但在可恢复带内    → warning，建议级别 medium
//  3. v < low/2、v < CriticalFloor 或 v > CriticalCeiling → critical，建议级别 high
func Classify(value int64, t domain.Thresholds) Result {
	if value >= t.Low && value <= t.High {
		return Result{Status: domain.ReadingNormal}
	}

	if value < t.Low {
		if value < t.Low/2 || value < CriticalFloor {
			return Result{Status: domain.ReadingCritical, Severity: domain.SeverityHigh, Abnormal: true}
		}
		return Result{Status: domain.ReadingWarning, Severity: domain.SeverityMedium, Abnormal: true}
	}

	// value > t.High
	if value > CriticalCeiling {
		return Result{Status: domain.ReadingCritical, Severity: domain.SeverityHigh, Abnormal: true}
	}
	return Result{Status: domain.ReadingWarning, Severity: domain.SeverityMedium, Abnormal: true}
}
