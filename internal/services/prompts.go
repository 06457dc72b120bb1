package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/techpostia/techpost/internal/models"
)

func LengthInstruction(length models.PostLength) string {
	switch length {
	case models.LengthShort:
		return "Short and direct. At most 2 short paragraphs plus 1 punchy closing sentence. Built for a quick read."
	case models.LengthLong:
		return "Long and in-depth. At least 5 paragraphs. Use a mini-article structure and explore the technical details."
	default:
		return "Medium length. Between 3 and 4 paragraphs. Balanced between depth and flow."
	}
}

// BuildGenerationPrompt renders the single instruction sent to the model.
// repoContext is embedded only when non-empty.
func BuildGenerationPrompt(req models.GenerationRequest, repoContext string, hasFiles bool) string {
	var sb strings.Builder

	sb.WriteString("You are a copywriting expert and ghostwriter working for CTOs and senior engineers.\n")
	fmt.Fprintf(&sb, "Your task is to write a post for the social network %s. Write the post in Brazilian Portuguese.\n\n", req.Channel)

	sb.WriteString("INPUT:\n")
	fmt.Fprintf(&sb, "- Target audience: %s (be careful with technical language).\n", req.Audience)
	fmt.Fprintf(&sb, "- Objective: %s\n", req.Objective)
	fmt.Fprintf(&sb, "- Tone of voice: %s\n", req.Tone)
	fmt.Fprintf(&sb, "- Required length: %s\n", LengthInstruction(req.Length))
	fmt.Fprintf(&sb, "- User context: %q\n", req.Context)

	if hasFiles {
		sb.WriteString("\nIMPORTANT: Use the attached files as the main source of technical information.\n")
	}

	if repoContext != "" {
		sb.WriteString("\nREPOSITORY CONTEXT (read from the linked GitHub project, use it as technical ground truth):\n")
		sb.WriteString(repoContext)
		sb.WriteString("\n")
	}

	sb.WriteString(`
REQUIRED STRUCTURE:
1. Title: on the FIRST LINE write a short, catchy title (no quotes).
2. Skip two lines.
3. Post body:
   - A provocative or technical hook.
   - A clear walkthrough of the solution.
   - A CTA (call to action).

STYLE RULES:
- No bold (**text**). Plain text only.
- Avoid empty jargon ("synergy").
- Write like a senior human.
- When it fits, share small opinions and use a touch of irony.
`)
	return sb.String()
}

// SplitTitleBody treats the first line as the title and the rest as the body.
func SplitTitleBody(raw string) (title, body string) {
	first, rest, found := strings.Cut(raw, "\n")
	if !found {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}

func buildRefinePrompt(content, instruction string) string {
	return fmt.Sprintf(`Act as a professional technical content editor. Change the text below following EXACTLY the edit instruction while changing the original text AS LITTLE AS POSSIBLE. Keep the original language.

ORIGINAL TEXT:
%q

EDIT INSTRUCTION:
%s

CRITICAL RULES:
1. Keep the original formatting (paragraphs, bullet points) where possible.
2. Return ONLY THE REWRITTEN TEXT. No "Here it is", no extra quotes, no conversation.
`, content, instruction)
}

func buildSuggestionsPrompt(repos []models.RepoSummary) (string, error) {
	summaries := make([]models.RepoSummary, len(repos))
	for i, r := range repos {
		summaries[i] = r
		if summaries[i].Description == "" {
			summaries[i].Description = "No description"
		}
	}
	reposJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal repositories: %w", err)
	}

	return fmt.Sprintf(`ACT AS: Developer Relations (DevRel) specialist.
TASK: Suggest 3 post ideas for LinkedIn and other social networks for each repository below. Write titles and ideas in Brazilian Portuguese.
REPOSITORIES:
%s

IMPORTANT: Answer ONLY with valid JSON in the shape below. No introduction. No markdown.

RESPONSE SHAPE (JSON):
[
  {
    "repo_name": "Repository name",
    "ideas": [
      { "title": "Short title", "context_prompt": "Detailed idea..." },
      { "title": "Short title", "context_prompt": "Detailed idea..." },
      { "title": "Short title", "context_prompt": "Detailed idea..." }
    ]
  }
]
`, reposJSON), nil
}
