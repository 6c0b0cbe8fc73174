// Package helper holds the side-effecting glue shared by commands:
// argument globbing, output files, confirmation prompts and templates.
package helper

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/util"
)

// Glob metachars. '{' counts as one: gobwas/glob supports {a,b} alternatives.
const globMetas = "*?[{"

// ParseFilenameArgs expands every glob arg ("*.png") into the matching files.
// "-", plain names and globs without any match are kept as is. Duplicates are removed.
func ParseFilenameArgs(args ...string) []string {
	names := []string{}
	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, globMetas) {
			names = append(names, arg)
		} else if matches := ParseGlobFilenames(arg); len(matches) > 0 {
			names = append(names, matches...)
		} else {
			names = append(names, arg)
		}
	}
	return util.UniqueSlice(names)
}

// ParseGlobFilenames returns the sorted regular files matching a shell-like pattern.
// "**" crosses dirs, a leading "~/" is the home dir. Hidden files and dirs match only
// when the pattern spells out the leading dot. An invalid pattern matches nothing.
func ParseGlobFilenames(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	if pattern == "~" || strings.HasPrefix(pattern, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			pattern = home + pattern[1:]
		}
	}
	pattern = filepath.ToSlash(filepath.Clean(pattern))
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		log.Debugf("invalid glob %q: %v", pattern, err)
		return nil
	}
	root := globRoot(pattern)
	// levels below root the pattern can reach, -1 for any
	maxDepth := -1
	if !strings.Contains(pattern, "**") {
		maxDepth = strings.Count(strings.TrimPrefix(pattern, root), "/")
		if root == "." {
			maxDepth++
		}
	}
	dotted := strings.HasPrefix(pattern, ".") || strings.Contains(pattern, "/.")

	var matches []string
	filepath.WalkDir(filepath.FromSlash(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		slashed := filepath.ToSlash(path)
		if d.IsDir() {
			if slashed == root {
				return nil
			}
			if (!dotted && strings.HasPrefix(d.Name(), ".")) ||
				(maxDepth >= 0 && depth(root, slashed) >= maxDepth) {
				return fs.SkipDir
			}
			return nil
		}
		if !dotted && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if g.Match(slashed) {
			matches = append(matches, path)
		}
		return nil
	})
	slices.Sort(matches)
	return matches
}

// globRoot returns the dir part of pattern before the first metachar, "." if none.
func globRoot(pattern string) string {
	prefix := pattern
	if i := strings.IndexAny(pattern, globMetas); i >= 0 {
		prefix = pattern[:i]
	}
	i := strings.LastIndex(prefix, "/")
	switch {
	case i < 0:
		return "."
	case i == 0:
		return "/"
	}
	return prefix[:i]
}

func depth(root, path string) int {
	rel := strings.TrimPrefix(strings.TrimPrefix(path, root), "/")
	if root == "." {
		rel = path
	}
	return strings.Count(rel, "/") + 1
}
