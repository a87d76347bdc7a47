// Package session resolves the current actor from stored authentication
// state: anonymous, member, or admin by allow-listed email. Resolution is
// performed fresh before every publish so track routing never relies on a
// stale identity.
package session
