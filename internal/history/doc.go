// Package history persists local per-user client state in SQLite: the
// advisory rate-limit records consulted before a publish and the 24-hour
// cache for the daily inspirational line.
package history
