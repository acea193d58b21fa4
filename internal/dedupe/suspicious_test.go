package dedupe

import "testing"

func TestSuspiciousPolicies(t *testing.T) {
	cases := []struct {
		host   string
		strict bool
		broad  bool
	}{
		{"Loc A", true, true},
		{"LOC downtown", true, true},
		{"Group 3-4", true, true},
		{"Group 8", false, true},
		{"group 12", false, true},
		{"Test Kitchen", true, true},
		{"duplicate entry", true, true},
		{"Normal Host", false, false},
		{"Grouper 5", false, false},
		{"Relocated Pantry", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := StrictSuspiciousPolicy(tc.host); got != tc.strict {
			t.Errorf("StrictSuspiciousPolicy(%q) = %v, want %v", tc.host, got, tc.strict)
		}
		if got := BroadSuspiciousPolicy(tc.host); got != tc.broad {
			t.Errorf("BroadSuspiciousPolicy(%q) = %v, want %v", tc.host, got, tc.broad)
		}
	}
}

func TestPolicyDivergenceExample(t *testing.T) {
	hosts := []string{"Loc A", "Group 3-4", "Group 8", "Normal Host"}
	var strict, broad []string
	for _, h := range hosts {
		if StrictSuspiciousPolicy(h) {
			strict = append(strict, h)
		}
		if BroadSuspiciousPolicy(h) {
			broad = append(broad, h)
		}
	}
	if len(strict) != 2 || strict[0] != "Loc A" || strict[1] != "Group 3-4" {
		t.Fatalf("strict policy flagged %v", strict)
	}
	if len(broad) != 3 || broad[2] != "Group 8" {
		t.Fatalf("broad policy flagged %v", broad)
	}
}
