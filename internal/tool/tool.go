// Package tool exposes the operations offered to the invoking agent:
// scan, analyze, plan, prepare, render, persist. The names are functional
// and transport-neutral; every result is JSON-shaped.
package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/hearme/internal/config"
	"github.com/dgnsrekt/hearme/internal/document"
	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/narration"
	"github.com/dgnsrekt/hearme/internal/output"
	"github.com/dgnsrekt/hearme/internal/plan"
	"github.com/dgnsrekt/hearme/internal/render"
	"github.com/dgnsrekt/hearme/internal/scanner"
	"github.com/dgnsrekt/hearme/internal/script"
)

// Toolbox binds the pipeline to one configuration and engine registry.
type Toolbox struct {
	cfg      *config.Config
	registry *engine.Registry
	orch     *render.Orchestrator
}

// New creates a toolbox over the given configuration and registry.
func New(cfg *config.Config, reg *engine.Registry) *Toolbox {
	return &Toolbox{cfg: cfg, registry: reg, orch: render.NewOrchestrator(reg)}
}

// Registry exposes the engine registry, e.g. for availability listings.
func (t *Toolbox) Registry() *engine.Registry { return t.registry }

// ScanWorkspace discovers candidate documentation under root.
func (t *Toolbox) ScanWorkspace(root string, includeAllMarkdown bool) (scanner.Result, error) {
	return scanner.Scan(root, scanner.Options{
		MaxFiles:           t.cfg.Scanner.MaxFiles,
		MaxFileBytes:       t.cfg.Scanner.MaxFileBytes,
		IncludeAllMarkdown: includeAllMarkdown,
	})
}

// Analysis is the result of classifying a set of documents.
type Analysis struct {
	Documents []*document.Document `json:"documents"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// AnalyzeDocuments classifies the given workspace-relative paths.
// Classification is pure per file and runs in parallel; records are
// re-sorted by path so the output order is deterministic regardless of
// scheduling. Unreadable files are reported as warnings, not failures.
func (t *Toolbox) AnalyzeDocuments(ctx context.Context, root string, paths []string) (Analysis, error) {
	var (
		mu       sync.Mutex
		analysis Analysis
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(root, filepath.FromSlash(rel))
			raw, truncated, err := scanner.ReadCapped(full, t.cfg.Scanner.MaxFileBytes)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				analysis.Warnings = append(analysis.Warnings, fmt.Sprintf("skipping unreadable document %s: %v", rel, err))
				return nil
			}
			if truncated {
				analysis.Warnings = append(analysis.Warnings, fmt.Sprintf("document %s truncated at byte cap", rel))
			}
			analysis.Documents = append(analysis.Documents, document.Classify(rel, raw))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}

	sort.Slice(analysis.Documents, func(i, j int) bool {
		return analysis.Documents[i].Path < analysis.Documents[j].Path
	})
	sort.Strings(analysis.Warnings)
	return analysis, nil
}

// ProposeAudioPlan ranks documents and proposes a speaker set bounded by
// current engine availability.
func (t *Toolbox) ProposeAudioPlan(ctx context.Context, docs []*document.Document) plan.Plan {
	return plan.Propose(ctx, docs, t.registry)
}

// LengthMode resolves an explicit length-mode name, falling back to the
// configured defaults.length when none is given.
func (t *Toolbox) LengthMode(explicit string) (narration.LengthMode, error) {
	if explicit == "" {
		explicit = t.cfg.Defaults.Length
	}
	return narration.ParseMode(explicit)
}

// PrepareAudioContext builds narration-ready context under a length mode.
func (t *Toolbox) PrepareAudioContext(docs []*document.Document, mode narration.LengthMode) narration.Context {
	return narration.Prepare(docs, mode)
}

// RenderAudio drives the script through the configured fallback chain and,
// on synthesized audio, writes the audio artifact under the output
// directory. All failure is encoded in the result; this never returns an
// error and never panics.
func (t *Toolbox) RenderAudio(ctx context.Context, scr script.Script, voices map[string]engine.Voice, format string) render.Result {
	if format == "" {
		format = t.cfg.Audio.Format
	}

	// No explicit voices: the configuration decides. "auto" assigns from the
	// pool; anything else names a voice-map file.
	auto := false
	if voices == nil {
		switch t.cfg.Audio.Voices {
		case "", "auto":
			auto = true
		default:
			loaded, err := render.LoadVoiceMap(t.cfg.Audio.Voices)
			if err != nil {
				return render.Result{
					Status:   render.StatusFailed,
					Warnings: []string{},
					Error:    fmt.Sprintf("configured voice map %s: %v", t.cfg.Audio.Voices, err),
				}
			}
			voices = loaded
		}
	}

	chain := t.registry.Chain(t.cfg.Audio.Engine, t.cfg.Audio.FallbackEngine)
	result := t.orch.Render(ctx, scr, voices, auto, chain, render.Options{
		Format:      format,
		Timeout:     t.cfg.Engines.SynthesisTimeout,
		RetryBudget: t.cfg.Engines.RetryBudget,
	})

	if len(result.Audio) > 0 {
		set := output.AllocateSet(t.cfg.Output.Dir, result.Format)
		path := set.AudioPath(result.Format)
		if err := output.WriteFileAtomic(path, result.Audio); err != nil {
			// Synthesis worked but the disk did not; degrade to script-only
			// rather than failing a completed render.
			log.Error("could not write audio artifact", "path", path, "err", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("audio could not be written: %v", err))
			result.Status = render.StatusScriptOnly
			result.Audio = nil
		} else {
			result.OutputPath = path
		}
	}
	return result
}

// PersistOutputs writes the script and manifest artifacts for a completed
// render next to its audio.
func (t *Toolbox) PersistOutputs(result render.Result, scr script.Script, meta output.Metadata) (*output.Manifest, error) {
	return output.Persist(result, scr, meta, t.cfg.Output.Dir)
}
