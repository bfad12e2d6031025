// Package scan discovers locally installed games. Each install source has
// its own adapter that walks a configured filesystem root, prefers
// source-specific install manifests when they exist, and emits normalized
// results. The orchestrator fans out across all enabled adapters
// concurrently; a broken adapter contributes an empty slice and never aborts
// the batch.
package scan
