package model

import "testing"

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"summer", "summer"},
		{"Summer 2026", "summer-2026"},
		{"  Back-to-School!  ", "back-to-school-"},
		{"UPPER_case", "upper-case"},
		{"already-clean-99", "already-clean-99"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeSlug(tt.in); got != tt.want {
			t.Errorf("SanitizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCampaignCopyMerge(t *testing.T) {
	base := DefaultCopy()

	if got := base.Merge(nil); got != base {
		t.Error("nil patch must be a no-op")
	}

	title := "New Title"
	terms := ""
	got := base.Merge(&CampaignCopyPatch{
		ReferrerPageTitle: &title,
		TermsContent:      &terms,
	})
	if got.ReferrerPageTitle != "New Title" {
		t.Errorf("title = %q", got.ReferrerPageTitle)
	}
	if got.TermsContent != "" {
		t.Errorf("terms = %q, want explicit empty string applied", got.TermsContent)
	}
	if got.FriendPageTitle != base.FriendPageTitle {
		t.Errorf("untouched field changed: %q", got.FriendPageTitle)
	}
}

func TestStandardFieldsMerge(t *testing.T) {
	base := DefaultStandardFields()

	if got := base.Merge(nil); got != base {
		t.Error("nil patch must be a no-op")
	}

	off := false
	got := base.Merge(&StandardFieldsPatch{Phone: &off})
	if got.Phone {
		t.Error("phone should be disabled")
	}
	if !got.ChildGrade {
		t.Error("child grade should keep its default")
	}
}

func TestRewardLabel(t *testing.T) {
	c := &Campaign{RewardAmount: "$150", RewardType: "Amazon voucher"}
	if got := c.RewardLabel(); got != "$150 Amazon voucher" {
		t.Errorf("RewardLabel = %q", got)
	}

	c = &Campaign{RewardAmount: "$50"}
	if got := c.RewardLabel(); got != "$50" {
		t.Errorf("RewardLabel = %q, want trimmed", got)
	}
}
