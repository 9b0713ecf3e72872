package app

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      Command
		wantKnown bool
	}{
		{"no args serves", nil, CommandServe, true},
		{"serve", []string{"serve"}, CommandServe, true},
		{"migrate", []string{"migrate"}, CommandMigrate, true},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck, true},
		{"trailing args are ignored", []string{"migrate", "--steps", "1"}, CommandMigrate, true},
		{"removed worker command falls back", []string{"worker"}, CommandServe, false},
		{"case sensitive", []string{"Serve"}, CommandServe, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseCommand(tt.args)
			if got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
			if known != tt.wantKnown {
				t.Errorf("ParseCommand(%v) known = %v, want %v", tt.args, known, tt.wantKnown)
			}
		})
	}
}
