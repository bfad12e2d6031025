package scan

import "strings"

// Source identifies the install source that produced a scan result. It is
// the discriminator of the result variant: source-specific fields such as
// SourceAppID are only meaningful for sources whose manifests carry them.
type Source string

const (
	SourceSteam    Source = "steam"
	SourceEpic     Source = "epic"
	SourceGOG      Source = "gog"
	SourceXbox     Source = "xbox"
	SourceUbisoft  Source = "ubisoft"
	SourceRockstar Source = "rockstar"
	SourceManual   Source = "manual"
)

var allSources = []Source{
	SourceSteam,
	SourceEpic,
	SourceGOG,
	SourceXbox,
	SourceUbisoft,
	SourceRockstar,
	SourceManual,
}

// ParseSource maps a configured source name to a Source.
func ParseSource(name string) (Source, bool) {
	normalized := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, source := range allSources {
		if source == normalized {
			return source, true
		}
	}
	return "", false
}

// Status represents the lifecycle of a scan result within one run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScanning  Status = "scanning"
	StatusMatched   Status = "matched"
	StatusAmbiguous Status = "ambiguous"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// Result is the ephemeral record of a discovered, unconfirmed install. It is
// consumed by reconciliation and never persisted.
type Result struct {
	Source       Source
	OriginalName string
	InstallPath  string
	ExePath      string
	SourceAppID  string
	Title        string
	Status       Status
	Error        string
}

// AppIDSet collects the source app ids present in a batch of results, keyed
// by source. Reconciliation uses it to detect removals for sources that have
// no stable executable to check.
func AppIDSet(results []Result) map[Source]map[string]struct{} {
	set := make(map[Source]map[string]struct{})
	for _, result := range results {
		if result.SourceAppID == "" {
			continue
		}
		ids, ok := set[result.Source]
		if !ok {
			ids = make(map[string]struct{})
			set[result.Source] = ids
		}
		ids[result.SourceAppID] = struct{}{}
	}
	return set
}
