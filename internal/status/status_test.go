package status

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{Stopped, Started}:  true,
		{Started, Stopping}: true,
		{Stopping, Stopped}: true,
	}
	for _, from := range All() {
		for _, to := range All() {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{input: "STOPPED", want: Stopped},
		{input: " started ", want: Started},
		{input: "Stopping", want: Stopping},
		{input: "paused", wantErr: true},
	}
	for _, tc := range tests {
		got, err := Parse(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestStable(t *testing.T) {
	if !Stopped.Stable() || !Started.Stable() {
		t.Fatalf("rest states must be stable")
	}
	if Stopping.Stable() {
		t.Fatalf("stopping must not be stable")
	}
}
