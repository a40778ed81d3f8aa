package model

// Chat is a named conversation thread bound to one assistant persona.
// Timestamps are date strings (ISO-8601, date part only).
type Chat struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at" validate:"required"`
	UpdatedAt string `json:"updated_at" validate:"required"`
}
