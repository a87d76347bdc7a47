package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestResolveShowTarget(t *testing.T) {
	cases := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"41", "41", false},
		{"#/p/41", "41", false},
		{"/p/41", "41", false},
		{"#/echoes", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := resolveShowTarget(tc.arg)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("resolveShowTarget(%q): expected error", tc.arg)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("resolveShowTarget(%q) = %q, %v; want %q", tc.arg, got, err, tc.want)
		}
	}
}

func TestTruncateShortensLongBodies(t *testing.T) {
	if got := truncate("line one\nline two", 100); got != "line one line two" {
		t.Fatalf("newlines should flatten, got %q", got)
	}
	got := truncate("abcdefghij", 5)
	if len([]rune(got)) != 5 {
		t.Fatalf("expected 5 runes, got %q", got)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "echopages.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"publish", "feed", "show", "ranks", "profile", "daily", "watch", "auth", "config"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing %q subcommand", name)
		}
	}
}
