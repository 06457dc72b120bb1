package models

import "time"

type PostStatus string

const (
	PostStatusIdea      PostStatus = "idea"
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusIdea, PostStatusDraft, PostStatusPublished:
		return true
	}
	return false
}

type Post struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	GeneratedText string     `json:"generated_text"`
	ContextPrompt string     `json:"context_prompt"`
	Audience      string     `json:"audience"`
	Tone          string     `json:"tone"`
	Objective     string     `json:"objective"`
	Platform      string     `json:"platform"`
	Status        PostStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
