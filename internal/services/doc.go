// Package services defines the sentinel error markers shared across the
// pipeline. Components wrap failures with a marker so callers can classify
// outcomes (configuration problems, timeouts, transient faults) with
// errors.Is instead of string matching.
package services
