package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"echopages/internal/fragment"
)

// dailyLinePrompt requests the single inspirational line shown on the home
// view. Kept deliberately terse so the model returns the line and nothing else.
const dailyLinePrompt = "Generate one hauntingly beautiful, short, introspective line of poetry. " +
	"No quotation marks. No explanation."

func buildAnalyzePrompt(text, title string) string {
	var builder strings.Builder
	builder.WriteString("You are the moderation and curation layer of a poetry platform. ")
	builder.WriteString("Analyze the poem below and respond with JSON only.\n\n")
	builder.WriteString("Rules:\n")
	fmt.Fprintf(&builder, "- genre MUST be one of: %s.\n", genreList())
	builder.WriteString("- score is how confidently the poem matches that genre, 0-100.\n")
	builder.WriteString("- justification is one short sentence explaining the genre choice.\n")
	builder.WriteString("- suggestedTitle is a short evocative title for the poem.\n")
	builder.WriteString("- emotionTag is a single word; emotionalWeight is its intensity, 0-100.\n")
	builder.WriteString("- backgroundGradient is a subtle dark CSS linear-gradient reflecting the mood.\n")
	builder.WriteString("- isSafe is false only for hate speech, sexual content involving minors, ")
	builder.WriteString("explicit pornography, or credible threats; set containsRestricted accordingly ")
	builder.WriteString("and explain the rejection in errorReason.\n")
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		fmt.Fprintf(&builder, "\nThe author proposed the title %q.\n", trimmed)
	}
	fmt.Fprintf(&builder, "\nPoem:\n%s\n", strings.TrimSpace(text))
	return builder.String()
}

func genreList() string {
	genres := fragment.Genres()
	labels := make([]string, len(genres))
	for i, genre := range genres {
		labels[i] = string(genre)
	}
	return strings.Join(labels, ", ")
}

func analyzeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isSafe":             {Type: genai.TypeBoolean},
			"containsRestricted": {Type: genai.TypeBoolean},
			"genre":              {Type: genai.TypeString},
			"score":              {Type: genai.TypeNumber},
			"justification":      {Type: genai.TypeString},
			"suggestedTitle":     {Type: genai.TypeString},
			"emotionTag":         {Type: genai.TypeString},
			"emotionalWeight":    {Type: genai.TypeNumber},
			"backgroundGradient": {Type: genai.TypeString},
			"errorReason":        {Type: genai.TypeString},
		},
		Required: []string{
			"isSafe", "genre", "score", "suggestedTitle",
			"emotionTag", "emotionalWeight", "backgroundGradient",
		},
	}
}
