package domain

import "testing"

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone  string
		region string
		want   bool
	}{
		{"", "NG", true},
		{"08012345678", "NG", true},
		{"+2348012345678", "NG", true},
		{"0801 234 5678", "NG", true},
		{"06012345678", "NG", false},
		{"12345", "NG", false},
		{"+14155552671", "US", true},
		{"555-0100-22", "", true},
		{"abc", "", false},
		{"+1234567890123456", "", false},
	}
	for _, tc := range cases {
		if got := ValidPhone(tc.phone, tc.region); got != tc.want {
			t.Fatalf("ValidPhone(%q, %q) = %v, want %v", tc.phone, tc.region, got, tc.want)
		}
	}
}

func TestNormalizers(t *testing.T) {
	if got := NormalizeServiceNumber("  n/12a "); got != "N/12A" {
		t.Fatalf("unexpected service number %q", got)
	}
	if got := NormalizeEmail(" Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := NormalizeUsername("Ada"); got != "ada" {
		t.Fatalf("unexpected username %q", got)
	}
}

func TestCanAdminister(t *testing.T) {
	if (Identity{IsActive: true}).CanAdminister() {
		t.Fatalf("plain identity must not administer")
	}
	if (Identity{IsActive: true, IsStaff: true}).CanAdminister() {
		t.Fatalf("staff without admin must not administer")
	}
	if !(Identity{IsActive: true, IsAdmin: true}).CanAdminister() {
		t.Fatalf("admin should administer")
	}
	if !(Identity{IsActive: true, IsSuperuser: true}).CanAdminister() {
		t.Fatalf("superuser should administer")
	}
	if (Identity{IsActive: false, IsAdmin: true}).CanAdminister() {
		t.Fatalf("inactive admin must not administer")
	}
}
