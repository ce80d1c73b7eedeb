// Package scanner discovers candidate documentation files in a workspace.
// The walk is bounded, deterministic (lexical path order) and respects
// .gitignore semantics plus a built-in denylist.
package scanner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Default bounds. Exceeding them truncates the scan with a warning; it
// never fails the run.
const (
	DefaultMaxFiles     = 100
	DefaultMaxFileBytes = 1 << 20 // 1 MiB
)

// Options bound and shape a scan.
type Options struct {
	MaxFiles           int
	MaxFileBytes       int64
	IncludeAllMarkdown bool // include every .md, not just known doc names
}

func (o Options) withDefaults() Options {
	if o.MaxFiles <= 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = DefaultMaxFileBytes
	}
	return o
}

// File is a discovered candidate document.
type File struct {
	Path string `json:"path"` // workspace-relative, slash-separated
	Size int64  `json:"size_bytes"`
}

// Result is the outcome of a workspace scan.
type Result struct {
	Root      string   `json:"root"`
	Files     []File   `json:"files"`
	Skipped   int      `json:"skipped"`
	Truncated bool     `json:"truncated"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Directories never descended into, regardless of ignore files.
var denyDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".hear-me":     true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"assets":       true,
	"media":        true,
	"models":       true,
}

// Extensions considered documentation.
var docExtensions = map[string]bool{
	".md":  true,
	".rst": true,
	".txt": true,
}

// Well-known documentation base names, with or without extension.
var docNames = []string{
	"readme", "contributing", "changelog", "architecture",
	"design", "api", "guide", "tutorial", "license", "history",
}

// Directories whose markdown content is documentation by location.
var docDirs = []string{"docs", "doc", "documentation", ".github", "adr"}

// Scan walks root and returns candidate documentation files in lexical
// path order. The walk stops after opts.MaxFiles candidates, recording a
// truncation warning; repeated runs on an unchanged tree are identical.
func Scan(root string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolve scan root: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return Result{}, fmt.Errorf("scan root: %w", err)
	}

	result := Result{Root: abs}
	ignore := loadGitignore(abs)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Skipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}

		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if denyDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") && !isDocDir(d.Name()) {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(rel+"/") {
				result.Skipped++
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore.MatchesPath(rel) {
			result.Skipped++
			return nil
		}
		if !isDocumentation(rel, opts.IncludeAllMarkdown) {
			return nil
		}

		if len(result.Files) >= opts.MaxFiles {
			result.Truncated = true
			return filepath.SkipAll
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			result.Skipped++
			return nil
		}
		if info.Size() > opts.MaxFileBytes {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is %s; reads are capped at %s", rel,
					humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(opts.MaxFileBytes))))
		}
		result.Files = append(result.Files, File{Path: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walk %s: %w", abs, err)
	}

	if result.Truncated {
		w := fmt.Sprintf("scan truncated at %d files; narrow the workspace or raise scanner.max_files", opts.MaxFiles)
		result.Warnings = append(result.Warnings, w)
		log.Warn("workspace scan truncated", "root", abs, "max_files", opts.MaxFiles)
	}

	return result, nil
}

// ReadCapped reads a file up to limit bytes. The second return value reports
// whether the file was truncated at the cap.
func ReadCapped(path string, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		limit = DefaultMaxFileBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, false, err
	}
	truncated := int64(len(data)) == limit
	if truncated {
		log.Debug("file read capped", "path", path, "cap", humanize.Bytes(uint64(limit)))
	}
	return data, truncated, nil
}

func loadGitignore(root string) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ign, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		log.Debug("unparseable .gitignore ignored", "path", path, "err", err)
		return nil
	}
	return ign
}

func isDocDir(name string) bool {
	for _, d := range docDirs {
		if name == d {
			return true
		}
	}
	return false
}

// isDocumentation decides whether a relative path looks like documentation:
// doc extension plus a known name or a doc directory, or an extensionless
// README/LICENSE at any level.
func isDocumentation(rel string, includeAllMarkdown bool) bool {
	base := strings.ToLower(filepath.Base(rel))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if ext == "" && (stem == "readme" || stem == "license") {
		return true
	}
	if !docExtensions[ext] {
		return false
	}
	if includeAllMarkdown && ext == ".md" {
		return true
	}

	dir := strings.ToLower(filepath.ToSlash(filepath.Dir(rel)))
	for _, d := range docDirs {
		if dir == d || strings.HasPrefix(dir, d+"/") || strings.Contains(dir, "/"+d+"/") || strings.HasSuffix(dir, "/"+d) {
			return true
		}
	}
	for _, name := range docNames {
		if strings.HasPrefix(stem, name) {
			return true
		}
	}
	return false
}
