package cli

import (
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"diff", "annotate", "capture", "select", "observe", "loop", "review", "serve", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Google Chrome", "google-chrome"},
		{"my_app-1.2", "my_app-1.2"},
		{"***", "app"},
		{"", "app"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeBaselineName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"login screen", "login_screen"},
		{"a/b:c", "a_b_c"},
		{"OK-1.png", "OK-1.png"},
		{"???", "baseline"},
	}
	for _, tc := range cases {
		if got := sanitizeBaselineName(tc.in); got != tc.want {
			t.Errorf("sanitizeBaselineName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
