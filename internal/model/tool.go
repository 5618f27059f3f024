package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tool represents a tool record. Every tool belongs to exactly one user and
// is invisible to everyone else.
type Tool struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToolDraft is the client-supplied payload for creating a tool. The owner is
// never part of the draft; it is assigned server-side.
type ToolDraft struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ToModel converts a draft into a tool with trimmed fields. ID and owner are
// left zero; the store assigns both.
func (d ToolDraft) ToModel() *Tool {
	return &Tool{
		Name:        strings.TrimSpace(d.Name),
		Quantity:    d.Quantity,
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
	}
}

// ToolPatch is a partial update. Nil fields leave the target unchanged;
// non-nil fields overwrite it.
type ToolPatch struct {
	Name        *string `json:"name"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// Apply copies the patch's non-nil fields onto the tool.
func (p ToolPatch) Apply(t *Tool) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Image != nil {
		t.Image = *p.Image
	}
}
