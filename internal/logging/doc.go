// Package logging wraps log/slog with the attribute helpers and component
// tagging conventions used across Onyx. Packages receive a *slog.Logger and
// tag it with their component name via NewComponentLogger; nil loggers are
// replaced with a no-op handler so every dependency stays optional.
package logging
