package github

import "strings"

// ParseRepoURL extracts owner and repository name from a GitHub URL. Protocol,
// "www.", the github.com host, a trailing ".git", any fragment and a trailing
// slash are tolerated.
func ParseRepoURL(raw string) (owner, repo string, ok bool) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".git")

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IsGitHubURL reports whether the string points at github.com at all.
func IsGitHubURL(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "github.com")
}
