package workflow

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gobwas/glob"
)

const globMeta = "*?[{"

// IsPattern reports whether an artifact path is a glob pattern
func IsPattern(p string) bool {
	return strings.ContainsAny(p, globMeta)
}

// compilePattern compiles a slash-separated artifact pattern
func compilePattern(p string) (glob.Glob, error) {
	return glob.Compile(filepath.ToSlash(p), '/')
}

// ArtifactsOverlap reports whether two declared artifact paths can name the
// same file: equal paths, or either one a pattern matching the other.
func ArtifactsOverlap(a, b string) bool {
	a, b = path.Clean(filepath.ToSlash(a)), path.Clean(filepath.ToSlash(b))
	if a == b {
		return true
	}
	if IsPattern(a) {
		if g, err := compilePattern(a); err == nil && g.Match(b) {
			return true
		}
	}
	if IsPattern(b) {
		if g, err := compilePattern(b); err == nil && g.Match(a) {
			return true
		}
	}
	return false
}

// ResolveArtifact returns the regular files under root matching an artifact
// path, as slash-separated paths relative to root. A literal path resolves
// to itself when it exists.
func ResolveArtifact(root, artifact string) ([]string, error) {
	artifact = path.Clean(filepath.ToSlash(artifact))
	if !IsPattern(artifact) {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(artifact)))
		if err != nil || !info.Mode().IsRegular() {
			return nil, nil
		}
		return []string{artifact}, nil
	}

	g, err := compilePattern(artifact)
	if err != nil {
		return nil, err
	}

	base := staticPrefix(artifact)
	start := filepath.Join(root, filepath.FromSlash(base))
	if _, err := os.Stat(start); err != nil {
		return nil, nil
	}

	var matches []string
	err = filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if g.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// staticPrefix returns the leading directories of a pattern that hold no glob syntax
func staticPrefix(pattern string) string {
	parts := strings.Split(pattern, "/")
	var static []string
	for _, p := range parts[:len(parts)-1] {
		if IsPattern(p) {
			break
		}
		static = append(static, p)
	}
	if len(static) == 0 {
		return "."
	}
	return strings.Join(static, "/")
}

// VerifyOutputs checks every expected artifact exists under root and records
// its size. A pattern is present when it matches at least one file; its size
// is the total of all matches.
func VerifyOutputs(root string, expected []config.Artifact) ([]OutputStatus, bool) {
	statuses := make([]OutputStatus, 0, len(expected))
	allPresent := true
	for _, a := range expected {
		st := OutputStatus{Artifact: a}
		files, err := ResolveArtifact(root, a.Path)
		if err == nil {
			for _, f := range files {
				info, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(f)))
				if statErr != nil {
					continue
				}
				st.Files = append(st.Files, f)
				st.Size += info.Size()
			}
		}
		st.Present = len(st.Files) > 0
		if !st.Present {
			allPresent = false
		}
		statuses = append(statuses, st)
	}
	return statuses, allPresent
}
