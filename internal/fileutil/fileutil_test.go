package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	if err := WriteAtomic(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content mismatch: got %q", data)
	}
	if Exists(path + ".tmp") {
		t.Error("temp file left behind")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"steam-620", "steam-620"},
		{"manual/Half Life 2", "manual-Half-Life-2"},
		{"a::b::c", "a-b-c"},
		{"  trimmed  ", "trimmed"},
		{"---", ""},
		{"Game_1.5", "Game_1.5"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.input); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`C:\Games\Portal 2`, "c:/games/portal 2"},
		{"/opt/games/", "/opt/games"},
		{"  /Opt/Games  ", "/opt/games"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.input); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestIsSubPath(t *testing.T) {
	if !IsSubPath(`C:\Games\Portal 2`, `c:/games/portal 2/bin`) {
		t.Error("expected containment across separator styles")
	}
	if IsSubPath("/opt/games/portal", "/opt/games/portal2") {
		t.Error("sibling with shared prefix must not be contained")
	}
	if IsSubPath("/opt/games/portal", "/opt/games/portal") {
		t.Error("equal paths must not be contained")
	}
}
