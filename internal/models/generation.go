package models

type PostLength string

const (
	LengthShort  PostLength = "SHORT"
	LengthMedium PostLength = "MEDIUM"
	LengthLong   PostLength = "LONG"
)

// Attachment is a user file sent inline with a generation request.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

type GenerationRequest struct {
	Channel   string       `json:"channel"`
	Audience  string       `json:"audience"`
	Objective string       `json:"objective"`
	Tone      string       `json:"tone"`
	Length    PostLength   `json:"length"`
	Context   string       `json:"context"`
	Files     []Attachment `json:"filesData"`
	RepoURL   string       `json:"repoUrl"`
}

type GenerationResponse struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	PostID string `json:"post_id,omitempty"`
}

type RefineRequest struct {
	Content     string `json:"content"`
	Instruction string `json:"instruction"`
}

type RefineResponse struct {
	RefinedText string `json:"refinedText"`
}
