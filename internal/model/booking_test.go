package model

import "testing"

func TestIsLiveStatus(t *testing.T) {
	cases := map[string]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
		"garbage":       false,
	}
	for status, want := range cases {
		if got := IsLiveStatus(status); got != want {
			t.Errorf("IsLiveStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{"garbage", StatusConfirmed, false},
	}
	for _, tc := range tests {
		if got := ValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
