package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "set.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeManifest(t, `
name: demo song
stems:
  - name: drums
    url: https://stems.example/drums.wav
  - name: bass
    url: file:///stems/bass.wav
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "demo song" {
		t.Errorf("Name = %q, want %q", m.Name, "demo song")
	}
	if len(m.Stems) != 2 {
		t.Fatalf("len(Stems) = %d, want 2", len(m.Stems))
	}
	if m.Stems[0].Name != "drums" || m.Stems[1].Name != "bass" {
		t.Errorf("stem order = %q, %q", m.Stems[0].Name, m.Stems[1].Name)
	}
}

func TestLoadRejectsBadManifests(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no stems", "name: empty\n", "no stems"},
		{"unnamed stem", "stems:\n  - url: a.wav\n", "has no name"},
		{"stem without url", "stems:\n  - name: drums\n", "has no url"},
		{"duplicate stem", "stems:\n  - name: drums\n    url: a.wav\n  - name: drums\n    url: b.wav\n", "duplicate"},
		{"not yaml", "{{{", "parse manifest"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tc.content))
			if err == nil {
				t.Fatal("Load accepted a bad manifest")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
