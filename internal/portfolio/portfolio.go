// Package portfolio holds the portfolio record and the typed parse and
// validation of create and update payloads.
package portfolio

import (
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the ISO-8601 form used for createdAt and updatedAt
// (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Portfolio is the only entity of the API. It is stored as-is in the table,
// partition key "id".
type Portfolio struct {
	ID          string   `dynamodbav:"id" json:"id"`
	Name        string   `dynamodbav:"name" json:"name"`
	Description string   `dynamodbav:"description" json:"description"`
	Skills      []string `dynamodbav:"skills" json:"skills"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string   `dynamodbav:"updatedAt" json:"updatedAt"`
}

// CreateInput is a validated create payload.
type CreateInput struct {
	Name        string
	Description string
	Skills      []string
}

// UpdateInput is a validated update payload. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Skills      *[]string
}

// IsEmpty reports whether the update changes nothing but updatedAt.
func (u UpdateInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Skills == nil
}

// Timestamp formats t the way records store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// New builds a fresh record for in: new id, createdAt == updatedAt == now.
func New(in CreateInput, now time.Time) Portfolio {
	ts := Timestamp(now)
	skills := make([]string, len(in.Skills))
	copy(skills, in.Skills)

	return Portfolio{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Skills:      skills,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// Normalize fills the defaults of a record read back from storage: missing
// skills become an empty list and missing timestamps become now.
func (p Portfolio) Normalize(now time.Time) Portfolio {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = Timestamp(now)
	}
	// createdAt <= updatedAt
	if p.CreatedAt == "" {
		p.CreatedAt = p.UpdatedAt
	}
	return p
}
