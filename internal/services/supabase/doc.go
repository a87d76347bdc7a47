// Package supabase is the backend client: PostgREST reads and writes for
// the two fragment tables, GoTrue email one-time-code authentication with a
// file-backed session store, and the realtime websocket used to invalidate
// cached feeds. Wire mapping between snake_case rows and fragment values is
// confined to this package.
package supabase
