package service

import "testing"

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		want  string
	}{
		{"local eleven digits", "08012345678", "0801*****78"},
		{"international long", "+2348012345678", "+2348*******78"},
		{"too short", "12345", "12345"},
		{"six digits unchanged", "123456", "123456"},
		{"seven digits", "1234567", "1234*67"},
		{"plus twelve chars uses four", "+12345678901", "+123******01"},
		{"separators stripped", "0801-234 5678", "0801*****78"},
		{"inner plus dropped", "0801+2345678", "0801*****78"},
		{"plus seven chars", "+123456", "+123*56"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskPhone(tc.phone); got != tc.want {
				t.Fatalf("MaskPhone(%q): expected %q, got %q", tc.phone, tc.want, got)
			}
		})
	}
}

func TestMaskPhone_KeepsLengthAndEnds(t *testing.T) {
	for _, phone := range []string{"08012345678", "+2348012345678", "1234567", "+44207946095"} {
		masked := MaskPhone(phone)
		if len(masked) != len(phone) {
			t.Fatalf("MaskPhone(%q): length changed to %d", phone, len(masked))
		}
		if masked[len(masked)-2:] != phone[len(phone)-2:] {
			t.Fatalf("MaskPhone(%q): last two digits not kept in %q", phone, masked)
		}
	}
}
