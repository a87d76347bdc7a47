package feed

import (
	"math"
	"sort"

	"echopages/internal/fragment"
)

// Rank is one author's standing in the community hierarchy.
type Rank struct {
	Author    string
	Fragments int
	MeanScore float64
}

// Leaderboard computes per-author standings from the community collection:
// fragment count and mean mastery score, ordered by mean score then count,
// ties broken by author name for a stable listing.
func (s *Synchronizer) Leaderboard() []Rank {
	type tally struct {
		count int
		total int
	}
	tallies := make(map[string]*tally)
	for _, f := range s.Collection(fragment.TrackCommunity) {
		author := f.Author
		if author == "" {
			author = "Observer"
		}
		t, ok := tallies[author]
		if !ok {
			t = &tally{}
			tallies[author] = t
		}
		t.count++
		t.total += f.Score
	}

	ranks := make([]Rank, 0, len(tallies))
	for author, t := range tallies {
		mean := float64(t.total) / float64(t.count)
		ranks = append(ranks, Rank{
			Author:    author,
			Fragments: t.count,
			MeanScore: math.Round(mean*10) / 10,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].MeanScore != ranks[j].MeanScore {
			return ranks[i].MeanScore > ranks[j].MeanScore
		}
		if ranks[i].Fragments != ranks[j].Fragments {
			return ranks[i].Fragments > ranks[j].Fragments
		}
		return ranks[i].Author < ranks[j].Author
	})
	return ranks
}
