package fragment

import (
	"strings"
	"time"
)

// Track selects which of the two parallel collections a fragment belongs to.
type Track string

const (
	// TrackCurated is the administrator-published "Read" channel.
	TrackCurated Track = "curated"
	// TrackCommunity is the general-user "Echoes" channel.
	TrackCommunity Track = "community"
)

// ParseTrack converts a string into a known Track.
func ParseTrack(value string) (Track, bool) {
	switch Track(strings.ToLower(strings.TrimSpace(value))) {
	case TrackCurated:
		return TrackCurated, true
	case TrackCommunity:
		return TrackCommunity, true
	default:
		return "", false
	}
}

// Genre is a member of the closed genre enumeration.
type Genre string

const (
	GenreNoir       Genre = "Noir"
	GenreEthereal   Genre = "Ethereal"
	GenreMinimalist Genre = "Minimalist"
	GenreFreeVerse  Genre = "Free Verse"
	GenreProse      Genre = "Prose"
	GenreHaiku      Genre = "Haiku"
)

// DefaultGenre is assigned whenever the classifier returns a label outside
// the enumeration.
const DefaultGenre = GenreMinimalist

var allGenres = []Genre{
	GenreNoir,
	GenreEthereal,
	GenreMinimalist,
	GenreFreeVerse,
	GenreProse,
	GenreHaiku,
}

var genreSet = func() map[string]Genre {
	set := make(map[string]Genre, len(allGenres))
	for _, genre := range allGenres {
		set[strings.ToLower(string(genre))] = genre
	}
	return set
}()

// Genres returns the ordered list of known genres.
func Genres() []Genre {
	cp := make([]Genre, len(allGenres))
	copy(cp, allGenres)
	return cp
}

// CoerceGenre maps an arbitrary classifier label onto the closed enumeration.
// Unknown values resolve to DefaultGenre so an invalid label never escapes.
func CoerceGenre(value string) Genre {
	if genre, ok := genreSet[strings.ToLower(strings.TrimSpace(value))]; ok {
		return genre
	}
	return DefaultGenre
}

// ClampScore bounds a mastery score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// UntitledPlaceholder is the literal a user-entered title must not match for
// it to win over the classifier's suggestion.
const UntitledPlaceholder = "Untitled"

// IsPlaceholderTitle reports whether a title should be replaced by the
// classifier's suggestion.
func IsPlaceholderTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed == "" || strings.EqualFold(trimmed, UntitledPlaceholder)
}

// Fragment is the unit of user-submitted content. ID is empty until the
// storage layer assigns one.
type Fragment struct {
	ID              string
	Title           string
	Content         string
	Author          string
	UserID          string
	Timestamp       time.Time
	Track           Track
	Genre           Genre
	Score           int
	Justification   string
	EmotionTag      string
	EmotionalWeight int
	BackgroundColor string
}

// Persisted reports whether the fragment has been accepted by storage.
func (f Fragment) Persisted() bool {
	return strings.TrimSpace(f.ID) != ""
}
