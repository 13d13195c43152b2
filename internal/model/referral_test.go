package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ReferralStatus
		want     bool
	}{
		{StatusPending, StatusPurchased, true},
		{StatusPurchased, StatusQualified, true},
		{StatusQualified, StatusRewarded, true},
		{StatusPending, StatusDisqualified, true},
		{StatusPurchased, StatusDisqualified, true},
		{StatusQualified, StatusDisqualified, true},

		{StatusPending, StatusQualified, false},
		{StatusPending, StatusRewarded, false},
		{StatusPurchased, StatusRewarded, false},
		{StatusPurchased, StatusPending, false},
		{StatusQualified, StatusPurchased, false},
		{StatusRewarded, StatusDisqualified, false},
		{StatusRewarded, StatusQualified, false},
		{StatusDisqualified, StatusPurchased, false},
		{StatusDisqualified, StatusDisqualified, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for status, want := range map[ReferralStatus]bool{
		StatusPending:      false,
		StatusPurchased:    false,
		StatusQualified:    false,
		StatusRewarded:     true,
		StatusDisqualified: true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}
