package models

import "time"

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type Profile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	UsageType        string    `json:"usage_type"`
	IsVIP            bool      `json:"is_vip"`
	UsageCount       int       `json:"usage_count"`
	Plan             string    `json:"plan"`
	DefaultChannel   string    `json:"default_channel,omitempty"`
	DefaultAudience  string    `json:"default_audience,omitempty"`
	DefaultTone      string    `json:"default_tone,omitempty"`
	DefaultObjective string    `json:"default_objective,omitempty"`
	AsaasCustomerID  *string   `json:"-"`
	StripeCustomerID *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfileUpdate carries the user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FullName         *string `json:"full_name"`
	UsageType        *string `json:"usage_type"`
	DefaultChannel   *string `json:"default_channel"`
	DefaultAudience  *string `json:"default_audience"`
	DefaultTone      *string `json:"default_tone"`
	DefaultObjective *string `json:"default_objective"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.UsageType == nil && u.DefaultChannel == nil &&
		u.DefaultAudience == nil && u.DefaultTone == nil && u.DefaultObjective == nil
}
