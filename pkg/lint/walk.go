package lint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/src-d/enry/v2"
)

// skippedDirs are never descended into, whatever the ignore files say.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".next":        true,
	".nuxt":        true,
	".turbo":       true,
}

// Walker discovers lintable files below a project root.
type Walker struct {
	root       string
	extensions map[string]bool
	exclude    *ignore.GitIgnore
	gitignore  *ignore.GitIgnore
}

// NewWalker creates a walker for root. Only files whose extension is in
// extensions are returned; exclude holds gitignore-style patterns matched
// against root-relative paths. The root .gitignore is honored when present.
func NewWalker(root string, extensions, exclude []string) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	w := &Walker{
		root:       abs,
		extensions: make(map[string]bool, len(extensions)),
		exclude:    ignore.CompileIgnoreLines(exclude...),
	}

	for _, ext := range extensions {
		w.extensions[strings.ToLower(ext)] = true
	}

	gitignorePath := filepath.Join(abs, ".gitignore")
	if _, statErr := os.Stat(gitignorePath); statErr == nil {
		w.gitignore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("load .gitignore: %w", err)
		}
	}

	return w, nil
}

// Collect expands paths into a sorted, de-duplicated file list. Directories
// are walked; files named explicitly are kept when their extension is
// lintable, even if an ignore pattern matches them.
func (w *Walker) Collect(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{w.root}
	}

	seen := make(map[string]bool)

	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if w.lintable(path) {
				add(filepath.Clean(path))
			}

			continue
		}

		err = w.walk(ctx, path, add)
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)

	return files, nil
}

// Filter keeps the files that a directory walk would have produced:
// lintable, not ignored, and inside one of scopes. Empty scopes means the
// walker root.
func (w *Walker) Filter(files, scopes []string) []string {
	if len(scopes) == 0 {
		scopes = []string{w.root}
	}

	absScopes := make([]string, 0, len(scopes))

	for _, scope := range scopes {
		abs, err := filepath.Abs(scope)
		if err == nil {
			absScopes = append(absScopes, abs)
		}
	}

	var out []string

	for _, file := range files {
		if !w.lintable(file) || w.ignored(file, false) || !w.within(file, absScopes) {
			continue
		}

		out = append(out, file)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

func (w *Walker) within(file string, scopes []string) bool {
	abs, err := filepath.Abs(file)
	if err != nil {
		return false
	}

	for _, scope := range scopes {
		if abs == scope || strings.HasPrefix(abs, scope+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func (w *Walker) walk(ctx context.Context, dir string, add func(string)) error {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if path == dir {
			return nil
		}

		if entry.IsDir() {
			if w.skipDir(path, entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() || !w.lintable(path) || w.ignored(path, false) {
			return nil
		}

		add(path)

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	return nil
}

func (w *Walker) skipDir(path, name string) bool {
	if skippedDirs[name] || strings.HasPrefix(name, ".") {
		return true
	}

	return w.ignored(path, true)
}

func (w *Walker) lintable(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// ignored matches path against vendor heuristics, the exclude patterns and
// the root .gitignore. Paths outside the root only see the vendor check.
func (w *Walker) ignored(path string, dir bool) bool {
	rel := w.relative(path)
	if dir {
		rel += "/"
	}

	if enry.IsVendor(rel) {
		return true
	}

	if strings.HasPrefix(rel, "..") {
		return false
	}

	if w.exclude.MatchesPath(rel) {
		return true
	}

	return w.gitignore != nil && w.gitignore.MatchesPath(rel)
}

func (w *Walker) relative(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}
