package models

import (
	"regexp"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var githubUsername = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// StripDataURLPrefix removes a "data:<mime>;base64," prefix when present.
func StripDataURLPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// NormalizeAttachments strips data URL prefixes and drops attachments whose
// payload ends up empty.
func NormalizeAttachments(files []Attachment) []Attachment {
	out := make([]Attachment, 0, len(files))
	for _, f := range files {
		f.Base64 = strings.TrimSpace(StripDataURLPrefix(f.Base64))
		if f.Base64 == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (a Attachment) Validate() error {
	return v.ValidateStruct(&a,
		v.Field(&a.MimeType, v.Required),
		v.Field(&a.Base64, v.Required, is.Base64),
	)
}

func (r GenerationRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Channel, v.Required),
		v.Field(&r.Files),
	)
}

func (r RefineRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Content, v.Required),
		v.Field(&r.Instruction, v.Required),
	)
}

func (r SuggestionsRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Username, v.Required, v.Match(githubUsername)),
	)
}

func (u ProfileUpdate) Validate() error {
	return v.ValidateStruct(&u,
		v.Field(&u.FullName, v.NilOrNotEmpty, v.Length(1, 120)),
		v.Field(&u.UsageType, v.Length(0, 60)),
	)
}

type CreatePostRequest struct {
	Title         string     `json:"title"`
	GeneratedText string     `json:"generated_text"`
	ContextPrompt string     `json:"context_prompt"`
	Audience      string     `json:"audience"`
	Tone          string     `json:"tone"`
	Objective     string     `json:"objective"`
	Platform      string     `json:"platform"`
	Status        PostStatus `json:"status"`
}

func (r CreatePostRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Title, v.Required.When(r.GeneratedText == "").Error("title or generated_text is required")),
		v.Field(&r.Status, v.When(r.Status != "", v.By(validStatus))),
	)
}

type UpdatePostRequest struct {
	Title         string `json:"title"`
	GeneratedText string `json:"generated_text"`
}

func (r UpdatePostRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.GeneratedText, v.Required),
	)
}

type UpdateStatusRequest struct {
	Status PostStatus `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Status, v.Required, v.By(validStatus)),
	)
}

func validStatus(value interface{}) error {
	s, _ := value.(PostStatus)
	if !s.Valid() {
		return v.NewError("validation_invalid_status", "must be one of idea, draft, published")
	}
	return nil
}
