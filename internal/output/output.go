// Package output persists render artifacts: audio, the script in both
// structured and plain form, and a metadata manifest. Writes are atomic
// (temp file, then rename) and prior outputs are never silently
// overwritten; collisions version the whole artifact set.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/hearme/internal/render"
	"github.com/dgnsrekt/hearme/internal/script"
)

// ManifestVersion identifies the artifact layout.
const ManifestVersion = "1.0"

const setBase = "hearme"

// Set names the four members of one artifact set. Ordinal 1 uses bare
// names (hearme.audio.wav); later ordinals insert the number
// (hearme.2.audio.wav), always as a complete sibling set.
type Set struct {
	Dir     string
	Ordinal int
}

func (s Set) member(kind string) string {
	if s.Ordinal <= 1 {
		return filepath.Join(s.Dir, fmt.Sprintf("%s.%s", setBase, kind))
	}
	return filepath.Join(s.Dir, fmt.Sprintf("%s.%d.%s", setBase, s.Ordinal, kind))
}

// AudioPath returns the audio member for the given format.
func (s Set) AudioPath(format string) string { return s.member("audio." + format) }

// ScriptJSONPath returns the structured script member.
func (s Set) ScriptJSONPath() string { return s.member("script.json") }

// ScriptTextPath returns the plain narration member.
func (s Set) ScriptTextPath() string { return s.member("script.txt") }

// ManifestPath returns the manifest member.
func (s Set) ManifestPath() string { return s.member("manifest.json") }

// occupied reports whether any member of the set already exists on disk.
func (s Set) occupied(format string) bool {
	candidates := []string{s.ScriptJSONPath(), s.ScriptTextPath(), s.ManifestPath()}
	if format != "" {
		candidates = append(candidates, s.AudioPath(format))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// AllocateSet returns the lowest-ordinal set with no member present in
// dir. Deterministic for a given directory state.
func AllocateSet(dir, format string) Set {
	for ordinal := 1; ; ordinal++ {
		s := Set{Dir: dir, Ordinal: ordinal}
		if !s.occupied(format) {
			return s
		}
	}
}

// Manifest records a completed render.
type Manifest struct {
	Version     string   `json:"version"`
	RenderID    string   `json:"render_id"`
	CreatedAt   string   `json:"created_at"`
	Status      string   `json:"status"`
	EngineUsed  string   `json:"engine_used,omitempty"`
	AudioFile   string   `json:"audio_file,omitempty"`
	ScriptJSON  string   `json:"script_json"`
	ScriptText  string   `json:"script_txt"`
	DurationSec float64  `json:"duration_seconds"`
	Segments    int      `json:"segment_count"`
	Warnings    []string `json:"warnings"`
	Documents   []string `json:"documents_used,omitempty"`

	// Path of the manifest itself, filled after writing.
	Path string `json:"-"`
}

// Metadata is the caller-supplied context persisted in the manifest.
type Metadata struct {
	Documents []string
}

// Persist writes one complete artifact set for a render. If the result
// already carries an audio path inside dir (written by render_audio) and
// that set's other members are free, the set is adopted; otherwise a fresh
// set is allocated and the audio bytes, when present, are written there
// too. Persisting the same result twice therefore produces a versioned
// sibling set, never an overwrite.
func Persist(result render.Result, scr script.Script, meta Metadata, dir string) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	set, audioPath, err := placeAudio(result, dir)
	if err != nil {
		return nil, err
	}

	scriptJSON, err := json.MarshalIndent(scr, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	if err := WriteFileAtomic(set.ScriptJSONPath(), scriptJSON); err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(set.ScriptTextPath(), []byte(plainScript(scr))); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		RenderID:    uuid.NewString(),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Status:      string(result.Status),
		EngineUsed:  result.Engine,
		AudioFile:   audioPath,
		ScriptJSON:  set.ScriptJSONPath(),
		ScriptText:  set.ScriptTextPath(),
		DurationSec: result.Duration.Seconds(),
		Segments:    len(scr),
		Warnings:    result.Warnings,
		Documents:   meta.Documents,
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := WriteFileAtomic(set.ManifestPath(), manifestJSON); err != nil {
		return nil, err
	}
	manifest.Path = set.ManifestPath()

	log.Info("outputs persisted", "dir", dir, "set", set.Ordinal, "audio", audioPath != "")
	return manifest, nil
}

// placeAudio decides which set this persist call owns and ensures the
// audio member exists there when audio is present.
func placeAudio(result render.Result, dir string) (Set, string, error) {
	format := result.Format

	if result.OutputPath != "" {
		if set, ok := adoptSet(result.OutputPath, dir); ok && !set.occupiedScripts() {
			return set, result.OutputPath, nil
		}
	}

	set := AllocateSet(dir, format)
	if len(result.Audio) == 0 {
		return set, "", nil
	}

	path := set.AudioPath(format)
	if err := WriteFileAtomic(path, result.Audio); err != nil {
		return set, "", err
	}
	return set, path, nil
}

func (s Set) occupiedScripts() bool {
	for _, p := range []string{s.ScriptJSONPath(), s.ScriptTextPath(), s.ManifestPath()} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// adoptSet recovers the set an audio path belongs to, when it lives in dir
// and follows the set naming scheme.
func adoptSet(audioPath, dir string) (Set, bool) {
	if filepath.Dir(audioPath) != filepath.Clean(dir) {
		return Set{}, false
	}
	name := filepath.Base(audioPath)
	if !strings.HasPrefix(name, setBase+".") {
		return Set{}, false
	}
	rest := strings.TrimPrefix(name, setBase+".")

	if strings.HasPrefix(rest, "audio.") {
		return Set{Dir: dir, Ordinal: 1}, true
	}
	var ordinal int
	if _, err := fmt.Sscanf(rest, "%d.audio.", &ordinal); err == nil && ordinal > 1 {
		return Set{Dir: dir, Ordinal: ordinal}, true
	}
	return Set{}, false
}

// plainScript renders the script as readable narration text, one
// [SPEAKER] block per segment, in input order.
func plainScript(scr script.Script) string {
	var b strings.Builder
	for _, seg := range scr {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", strings.ToUpper(seg.Speaker), seg.Text)
	}
	return b.String()
}

// WriteFileAtomic writes data to path via a temp file in the same
// directory followed by a rename, so a partial write is never visible
// under the final name.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck
		os.Remove(tmpName)   //nolint:errcheck
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("move %s into place: %w", path, err)
	}
	return nil
}
