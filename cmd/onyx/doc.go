// Command onyx is the operational CLI for the game library pipeline: it
// scans install sources, reconciles discoveries against the library,
// resolves metadata from ranked providers, and manages the local asset
// cache.
package main
