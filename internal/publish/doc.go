// Package publish runs a draft through the full pipeline: moderation,
// classification, persistence, and feed sync, with a typed error for each
// failure class. The identity is resolved fresh at publish time and a draft
// that failed to persist keeps its classification for the retry.
package publish
