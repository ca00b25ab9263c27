package model

import "testing"

func TestReportCanTransition(t *testing.T) {
	tests := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportPending, ReportInReview, true},
		{ReportPending, ReportRejected, true},
		{ReportPending, ReportResolved, false},
		{ReportInReview, ReportResolved, true},
		{ReportInReview, ReportRejected, true},
		{ReportInReview, ReportPending, false},
		{ReportResolved, ReportRejected, false},
		{ReportRejected, ReportInReview, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
