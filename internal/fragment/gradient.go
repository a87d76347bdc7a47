package fragment

import "fmt"

// DefaultGradient is the presentation gradient applied when the classifier
// does not supply one.
const DefaultGradient = "linear-gradient(135deg, #1a1a1a 0%, #2d3436 100%)"

var atmosphericPalette = [][2]string{
	{"#0f172a", "#1e1b4b"},
	{"#1e1b4b", "#450a0a"},
	{"#020617", "#1e293b"},
	{"#2d0a0a", "#000000"},
	{"#1e1b0b", "#451a03"},
	{"#082f49", "#0c4a6e"},
	{"#171717", "#404040"},
	{"#312e81", "#1e1b4b"},
	{"#4c1d95", "#1e1b4b"},
}

// AtmosphericGradient derives a stable background gradient from a fragment
// identifier. Equal ids always resolve to the same palette entry.
func AtmosphericGradient(id string) string {
	if id == "" {
		return "linear-gradient(180deg, #0f172a 0%, #1e1b4b 100%)"
	}
	var hash uint32
	for _, r := range id {
		hash = hash<<5 - hash + uint32(r)
	}
	palette := atmosphericPalette[int(hash%uint32(len(atmosphericPalette)))]
	return fmt.Sprintf("linear-gradient(180deg, %s 0%%, %s 100%%)", palette[0], palette[1])
}
