package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
		want     bool
	}{
		{AlertStatusNew, AlertStatusAcknowledged, true},
		{AlertStatusNew, AlertStatusDispatched, true}, // 跳级前进合法
		{AlertStatusNew, AlertStatusResolved, true},
		{AlertStatusAcknowledged, AlertStatusDispatched, true},
		{AlertStatusDispatched, AlertStatusResolved, true},
		{AlertStatusDispatched, AlertStatusAcknowledged, false}, // 回退
		{AlertStatusResolved, AlertStatusResolved, false},       // 等状态
		{AlertStatusResolved, AlertStatusNew, false},            // 终态之后一律拒绝
		{AlertStatusNew, "escalated", false},                    // 未知状态
		{"", AlertStatusResolved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidators(t *testing.T) {
	if !ValidRole(RoleControlRoom) || ValidRole("superuser") {
		t.Error("role validation broken")
	}
	if !ValidAlertType(AlertTypeAutomatic) || ValidAlertType("telepathic") {
		t.Error("alert type validation broken")
	}
	if !ValidSeverity(SeverityMedium) || ValidSeverity("catastrophic") {
		t.Error("severity validation broken")
	}
	if !ValidAlertStatus(AlertStatusDispatched) || ValidAlertStatus("escalated") {
		t.Error("alert status validation broken")
	}
	if !ValidReadingStatus(ReadingWarning) || ValidReadingStatus("elevated") {
		t.Error("reading status validation broken")
	}
}
