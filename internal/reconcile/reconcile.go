// Package reconcile classifies scan results against the persisted library.
// A result is matched by deterministic id, then normalized executable path,
// then normalized install directory including containment. Entries whose
// backing install can no longer be found are flagged for removal
// confirmation, never deleted here.
package reconcile

import (
	"onyx/internal/fileutil"
	"onyx/internal/library"
	"onyx/internal/scan"
)

// Report is the outcome of one reconciliation pass.
type Report struct {
	// New holds scan results that matched no existing entry.
	New []scan.Result
	// Known maps matched scan results to the entry id they matched.
	Known map[string]scan.Result
	// Missing holds entries whose install could not be confirmed by this
	// scan. Removal requires explicit confirmation by the caller.
	Missing []*library.Entry
}

// Classify evaluates every scan result against the existing library and
// reports new and missing games. First match wins per result.
func Classify(results []scan.Result, existing []*library.Entry) Report {
	report := Report{Known: make(map[string]scan.Result)}

	index := buildIndex(existing)
	for _, result := range results {
		if entry := index.match(result); entry != nil {
			report.Known[entry.ID] = result
			continue
		}
		report.New = append(report.New, result)
	}

	appIDs := scan.AppIDSet(results)
	for _, entry := range existing {
		if missing(entry, appIDs) {
			report.Missing = append(report.Missing, entry)
		}
	}
	return report
}

type libraryIndex struct {
	byID      map[string]*library.Entry
	byExePath map[string]*library.Entry
	byInstall map[string]*library.Entry
	entries   []*library.Entry
}

func buildIndex(existing []*library.Entry) *libraryIndex {
	index := &libraryIndex{
		byID:      make(map[string]*library.Entry, len(existing)),
		byExePath: make(map[string]*library.Entry, len(existing)),
		byInstall: make(map[string]*library.Entry, len(existing)),
		entries:   existing,
	}
	for _, entry := range existing {
		index.byID[entry.ID] = entry
		if norm := fileutil.NormalizePath(entry.ExePath); norm != "" {
			index.byExePath[norm] = entry
		}
		if norm := fileutil.NormalizePath(entry.InstallPath); norm != "" {
			index.byInstall[norm] = entry
		}
	}
	return index
}

func (idx *libraryIndex) match(result scan.Result) *library.Entry {
	if id := library.EntryID(result.Source, result.SourceAppID); id != "" {
		if entry, ok := idx.byID[id]; ok {
			return entry
		}
	}

	if norm := fileutil.NormalizePath(result.ExePath); norm != "" {
		if entry, ok := idx.byExePath[norm]; ok {
			return entry
		}
	}

	installNorm := fileutil.NormalizePath(result.InstallPath)
	if installNorm == "" {
		return nil
	}
	if entry, ok := idx.byInstall[installNorm]; ok {
		return entry
	}
	// Containment: a scanned path inside a known install directory is the
	// same game, not a new one.
	for _, entry := range idx.entries {
		entryNorm := fileutil.NormalizePath(entry.InstallPath)
		if entryNorm == "" {
			continue
		}
		if fileutil.IsSubPath(entryNorm, installNorm) {
			return entry
		}
	}
	return nil
}

// missing reports whether an entry's install could not be confirmed. Entries
// with an executable are checked on disk; entries without one fall back to
// the current scan's source app id set. An entry with neither signal is left
// alone.
func missing(entry *library.Entry, appIDs map[scan.Source]map[string]struct{}) bool {
	if entry.ExePath != "" {
		return !fileutil.Exists(entry.ExePath)
	}
	if entry.SourceAppID == "" {
		return false
	}
	seen, scanned := appIDs[scan.Source(entry.Source)]
	if !scanned {
		// Source was not part of this scan run; absence proves nothing.
		return false
	}
	_, ok := seen[entry.SourceAppID]
	return !ok
}
