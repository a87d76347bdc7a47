// Package feed keeps the curated and community collections synchronized
// with storage, applies optimistic head inserts after a publish, resolves
// hash routes, and computes the community leaderboard.
package feed
