package groupstatus

import "testing"

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantCode string
		wantNil  bool
	}{
		{name: "upperCase", in: "ACTIVE", wantCode: "ACTIVE"},
		{name: "lowerCase", in: "completed", wantCode: "COMPLETED"},
		{name: "unknown", in: "archived", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByName(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ByName(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || got.Code() != tt.wantCode {
				t.Errorf("ByName(%q) = %v, want %s", tt.in, got, tt.wantCode)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Statuses.Completed.Label(); got != "Completed" {
		t.Errorf("Label() = %q, want Completed", got)
	}
}
