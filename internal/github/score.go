package github

import (
	"path"
	"sort"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	".md": {}, ".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".py": {}, ".java": {},
	".c": {}, ".cpp": {}, ".h": {}, ".css": {}, ".json": {}, ".sql": {},
}

var excludedFragments = []string{
	"package-lock",
	"yarn.lock",
	"dist/",
	".next/",
	"node_modules/",
}

var sourceDirs = []string{"src/", "app/", "lib/"}

// scoreRule assigns a score to a lowercase path. Rules are evaluated in
// order and the first match wins.
type scoreRule struct {
	name  string
	match func(p string) bool
	score int
}

var scoreRules = []scoreRule{
	{
		name:  "readme",
		match: func(p string) bool { return strings.HasSuffix(p, "readme.md") },
		score: 100,
	},
	{
		name:  "source-component",
		match: func(p string) bool { return inSourceDir(p) && hasAnySuffix(p, ".tsx", ".jsx") },
		score: 80,
	},
	{
		name:  "source-logic",
		match: func(p string) bool { return inSourceDir(p) && hasAnySuffix(p, ".ts", ".js") },
		score: 70,
	},
	{
		name:  "source-other",
		match: inSourceDir,
		score: 60,
	},
	{
		name:  "config",
		match: func(p string) bool { return strings.Contains(p, "config") || strings.Contains(p, "json") },
		score: 10,
	},
}

const defaultScore = 20

type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type ScoredFile struct {
	Path  string
	Score int
}

func Score(filePath string) int {
	p := strings.ToLower(filePath)
	for _, r := range scoreRules {
		if r.match(p) {
			return r.score
		}
	}
	return defaultScore
}

// Eligible reports whether a tree entry is a blob we are willing to read.
func Eligible(e TreeEntry) bool {
	if e.Type != "blob" {
		return false
	}
	if _, ok := allowedExtensions[strings.ToLower(path.Ext(e.Path))]; !ok {
		return false
	}
	for _, frag := range excludedFragments {
		if strings.Contains(e.Path, frag) {
			return false
		}
	}
	return true
}

// SelectFiles filters, scores and ranks the tree, keeping at most max files.
// Ties keep tree order.
func SelectFiles(entries []TreeEntry, max int) []ScoredFile {
	files := make([]ScoredFile, 0, len(entries))
	for _, e := range entries {
		if !Eligible(e) {
			continue
		}
		files = append(files, ScoredFile{Path: e.Path, Score: Score(e.Path)})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Score > files[j].Score
	})

	if max >= 0 && len(files) > max {
		files = files[:max]
	}
	return files
}

func inSourceDir(p string) bool {
	for _, d := range sourceDirs {
		if strings.HasPrefix(p, d) {
			return true
		}
	}
	return false
}

func hasAnySuffix(p string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	return false
}
