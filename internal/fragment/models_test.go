package fragment_test

import (
	"strconv"
	"strings"
	"testing"

	"echopages/internal/fragment"
)

func TestCoerceGenreKeepsKnownLabels(t *testing.T) {
	for _, genre := range fragment.Genres() {
		if got := fragment.CoerceGenre(string(genre)); got != genre {
			t.Fatalf("CoerceGenre(%q) = %q", genre, got)
		}
	}
	if got := fragment.CoerceGenre("free verse"); got != fragment.GenreFreeVerse {
		t.Fatalf("expected case-insensitive match, got %q", got)
	}
}

func TestCoerceGenreDefaultsUnknownLabels(t *testing.T) {
	for _, value := range []string{"", "Sonnet", "limerick", "  ", "42"} {
		if got := fragment.CoerceGenre(value); got != fragment.DefaultGenre {
			t.Fatalf("CoerceGenre(%q) = %q, want default", value, got)
		}
	}
}

func TestClampScore(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 50: 50, 100: 100, 140: 100}
	for in, want := range cases {
		if got := fragment.ClampScore(in); got != want {
			t.Fatalf("ClampScore(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestIsPlaceholderTitle(t *testing.T) {
	for _, title := range []string{"", "  ", "Untitled", "untitled", " UNTITLED "} {
		if !fragment.IsPlaceholderTitle(title) {
			t.Fatalf("expected %q to be a placeholder", title)
		}
	}
	if fragment.IsPlaceholderTitle("Ceiling of Stars") {
		t.Fatal("real titles are not placeholders")
	}
}

func TestParseTrack(t *testing.T) {
	if track, ok := fragment.ParseTrack(" Curated "); !ok || track != fragment.TrackCurated {
		t.Fatalf("unexpected parse result: %q %v", track, ok)
	}
	if _, ok := fragment.ParseTrack("hidden"); ok {
		t.Fatal("expected unknown track to fail")
	}
}

func TestAtmosphericGradientIsStable(t *testing.T) {
	first := fragment.AtmosphericGradient("echo-42")
	second := fragment.AtmosphericGradient("echo-42")
	if first != second {
		t.Fatalf("gradient not stable: %q vs %q", first, second)
	}
	if fragment.AtmosphericGradient("") == "" {
		t.Fatal("empty id must still yield a gradient")
	}
}

func TestAtmosphericGradientNeverPanicsOnOverflowingHashes(t *testing.T) {
	// Long ids wrap the 32-bit accumulator; a signed hash negated at
	// math.MinInt32 stays negative and would index out of range.
	ids := []string{string(rune(0x10FFFF)), strings.Repeat("z", 64), "\x00\x00"}
	for i := 0; i < 512; i++ {
		ids = append(ids, strings.Repeat("q", i)+strconv.Itoa(i))
	}
	for _, id := range ids {
		got := fragment.AtmosphericGradient(id)
		if !strings.HasPrefix(got, "linear-gradient(180deg, #") {
			t.Fatalf("AtmosphericGradient(%q) = %q", id, got)
		}
	}
}
