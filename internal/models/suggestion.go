package models

type Idea struct {
	Title         string `json:"title"`
	ContextPrompt string `json:"context_prompt"`
}

type RepoSuggestion struct {
	RepoName string `json:"repo_name"`
	Ideas    []Idea `json:"ideas"`
}

type SuggestionsRequest struct {
	Username string `json:"username"`
	Refresh  bool   `json:"refresh"`
}

type SuggestionsResponse struct {
	Suggestions []RepoSuggestion `json:"suggestions"`
	Fallback    bool             `json:"fallback,omitempty"`
}

// RepoSummary is the slice of GitHub repository metadata fed to the ideas prompt.
type RepoSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
}
