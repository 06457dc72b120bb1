package services

import (
	"strings"
)

func cleanJSONMarkdown(content string) string {
	content = strings.TrimSpace(content)

	if !strings.Contains(content, "```") {
		return content
	}

	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}

	inner := parts[1]

	if strings.HasPrefix(inner, "json") {
		inner = inner[4:]
	} else if strings.HasPrefix(inner, "JSON") {
		inner = inner[4:]
	}

	return strings.TrimSpace(inner)
}

// stripCodeFences removes every markdown fence marker, keeping the text
// between them.
func stripCodeFences(content string) string {
	content = strings.ReplaceAll(content, "```markdown", "")
	content = strings.ReplaceAll(content, "```text", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

func applyFuncOptions[T any](entity T, opts ...func(entity T) error) error {
	for _, opt := range opts {
		err := opt(entity)
		if err != nil {
			return err
		}
	}
	return nil
}

func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
