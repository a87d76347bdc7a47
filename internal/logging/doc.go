// Package logging builds the slog loggers used across the client. It offers
// a console handler for interactive use, a JSON handler for machine
// consumption, and small attribute helpers shared by call sites.
package logging
