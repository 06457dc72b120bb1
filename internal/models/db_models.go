package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ProfileDB struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID               string    `bun:"id,pk" json:"id"`
	Email            string    `bun:"email" json:"email"`
	FullName         string    `bun:"full_name" json:"full_name"`
	UsageType        string    `bun:"usage_type" json:"usage_type"`
	IsVIP            bool      `bun:"is_vip,notnull,default:false" json:"is_vip"`
	UsageCount       int       `bun:"usage_count,notnull,default:0" json:"usage_count"`
	Plan             string    `bun:"plan,notnull,default:'free'" json:"plan"`
	DefaultChannel   string    `bun:"default_channel" json:"default_channel"`
	DefaultAudience  string    `bun:"default_audience" json:"default_audience"`
	DefaultTone      string    `bun:"default_tone" json:"default_tone"`
	DefaultObjective string    `bun:"default_objective" json:"default_objective"`
	AsaasCustomerID  *string   `bun:"asaas_customer_id" json:"asaas_customer_id,omitempty"`
	StripeCustomerID *string   `bun:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (p *ProfileDB) ToProfile() *Profile {
	return &Profile{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		UsageType:        p.UsageType,
		IsVIP:            p.IsVIP,
		UsageCount:       p.UsageCount,
		Plan:             p.Plan,
		DefaultChannel:   p.DefaultChannel,
		DefaultAudience:  p.DefaultAudience,
		DefaultTone:      p.DefaultTone,
		DefaultObjective: p.DefaultObjective,
		AsaasCustomerID:  p.AsaasCustomerID,
		StripeCustomerID: p.StripeCustomerID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ProfileFromDomain(p *Profile) *ProfileDB {
	return &ProfileDB{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		UsageType:        p.UsageType,
		IsVIP:            p.IsVIP,
		UsageCount:       p.UsageCount,
		Plan:             p.Plan,
		DefaultChannel:   p.DefaultChannel,
		DefaultAudience:  p.DefaultAudience,
		DefaultTone:      p.DefaultTone,
		DefaultObjective: p.DefaultObjective,
		AsaasCustomerID:  p.AsaasCustomerID,
		StripeCustomerID: p.StripeCustomerID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type PostDB struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID            string     `bun:"id,pk,type:uuid" json:"id"`
	UserID        string     `bun:"user_id,notnull" json:"user_id"`
	Title         string     `bun:"title" json:"title"`
	GeneratedText string     `bun:"generated_text" json:"generated_text"`
	ContextPrompt string     `bun:"context_prompt" json:"context_prompt"`
	Audience      string     `bun:"audience" json:"audience"`
	Tone          string     `bun:"tone" json:"tone"`
	Objective     string     `bun:"objective" json:"objective"`
	Platform      string     `bun:"platform" json:"platform"`
	Status        PostStatus `bun:"status,notnull,default:'draft'" json:"status"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (p *PostDB) ToPost() *Post {
	return &Post{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		GeneratedText: p.GeneratedText,
		ContextPrompt: p.ContextPrompt,
		Audience:      p.Audience,
		Tone:          p.Tone,
		Objective:     p.Objective,
		Platform:      p.Platform,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func PostFromDomain(p *Post) *PostDB {
	return &PostDB{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		GeneratedText: p.GeneratedText,
		ContextPrompt: p.ContextPrompt,
		Audience:      p.Audience,
		Tone:          p.Tone,
		Objective:     p.Objective,
		Platform:      p.Platform,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
