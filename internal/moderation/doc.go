// Package moderation implements the local content validator: length bounds,
// a repeated-character junk heuristic, a short blacklist pre-filter, and
// per-user advisory rate limiting over the history store. The authoritative
// safety decision belongs to the classifier, not this package.
package moderation
