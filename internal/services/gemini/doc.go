// Package gemini wraps the generative completion endpoint used for
// classification. Analyze issues a single schema-constrained round trip and
// coerces the response into the closed genre enumeration and bounded scores;
// DailyLine serves the 24-hour-cached inspirational line.
package gemini
