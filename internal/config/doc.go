// Package config loads, normalizes, and validates the TOML configuration
// for the Echo Pages client. Credentials may also arrive via the
// SUPABASE_URL, SUPABASE_ANON_KEY, and GEMINI_API_KEY environment variables.
package config
