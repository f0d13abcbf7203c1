package jj

import "testing"

func TestParseVersionOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want version
		ok   bool
	}{
		{name: "empty", in: "", ok: false},
		{name: "plain", in: "jj 0.25.0\n", want: version{major: 0, minor: 25, patch: 0}, ok: true},
		{name: "commit_suffix", in: "jj 0.30.0-6ae1a3d8c6a8e5b7\n", want: version{major: 0, minor: 30, patch: 0}, ok: true},
		{name: "no_prefix", in: "0.28.2\n", want: version{major: 0, minor: 28, patch: 2}, ok: true},
		{name: "no_patch", in: "jj 1.2\n", want: version{major: 1, minor: 2, patch: 0}, ok: true},
		{name: "invalid", in: "jj unknown\n", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseVersionOutput(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got=%+v)", ok, tt.ok, got)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateVersionOutput(t *testing.T) {
	if err := validateVersionOutput("jj 0.25.0\n"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := validateVersionOutput("jj 0.24.9\n"); err == nil {
		t.Fatal("expected error for old jj")
	}
	if err := validateVersionOutput("jj 1.0.0\n"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}
