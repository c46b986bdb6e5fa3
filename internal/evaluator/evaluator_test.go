package evaluator

import (
	"testing"

	"heartguard-alert/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassify_NormalRange(t *testing.T) {
	thresholds := domain.Thresholds{Low: 50, High: 120}

	for _, v := range []int64{50, 72, 100, 120} {
		result := Classify(v, thresholds)
		assert.Equal(t, domain.ReadingNormal, result.Status, "value=%d", v)
		assert.False(t, result.Abnormal, "value=%d", v)
	}
}

func TestClassify_WarningBand(t *testing.T) {
	thresholds := domain.Thresholds{Low: 50, High: 120}

	// 低于下限但仍在可恢复带内
	result := Classify(45, thresholds)
	assert.Equal(t, domain.ReadingWarning, result.Status)
	assert.Equal(t, domain.SeverityMedium, result.Severity)
	assert.True(t, result.Abnormal)

	// 高于上限但未到硬性临界上界
	result = Classify(130, thresholds)
	assert.Equal(t, domain.ReadingWarning, result.Status)
	assert.Equal(t, domain.SeverityMedium, result.Severity)
	assert.True(t, result.Abnormal)
}

func TestClassify_CriticalLow(t *testing.T) {
	// 低于硬性下界（35 < 40）
	result := Classify(35, domain.Thresholds{Low: 50, High: 120})
	assert.Equal(t, domain.ReadingCritical, result.Status)
	assert.Equal(t, domain.SeverityHigh, result.Severity)
	assert.True(t, result.Abnormal)

	// 低于 low/2（45 < 100/2）
	result = Classify(45, domain.Thresholds{Low: 100, High: 160})
	assert.Equal(t, domain.ReadingCritical, result.Status)
	assert.Equal(t, domain.SeverityHigh, result.Severity)
}

func TestClassify_CriticalHigh(t *testing.T) {
	thresholds := domain.Thresholds{Low: 50, High: 120}

	// 高于 140 一律 critical（150 不是 warning）
	result := Classify(150, thresholds)
	assert.Equal(t, domain.ReadingCritical, result.Status)
	assert.Equal(t, domain.SeverityHigh, result.Severity)
	assert.True(t, result.Abnormal)

	result = Classify(190, thresholds)
	assert.Equal(t, domain.ReadingCritical, result.Status)
	assert.Equal(t, domain.SeverityHigh, result.Severity)
	assert.True(t, result.Abnormal)
}

func TestClassify_Boundaries(t *testing.T) {
	thresholds := domain.Thresholds{Low: 50, High: 120}

	// 硬性上界本身仍是 warning，超过才是 critical
	assert.Equal(t, domain.ReadingWarning, Classify(CriticalCeiling, thresholds).Status)
	assert.Equal(t, domain.ReadingCritical, Classify(CriticalCeiling+1, thresholds).Status)

	// 硬性下界本身是 warning，低于才是 critical
	assert.Equal(t, domain.ReadingWarning, Classify(CriticalFloor, thresholds).Status)
	assert.Equal(t, domain.ReadingCritical, Classify(CriticalFloor-1, thresholds).Status)
}
