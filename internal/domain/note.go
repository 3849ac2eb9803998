package domain

import "time"

// NoteEntityType names the kind of record a note is attached to.
type NoteEntityType string

const (
	NoteEntityCandidate   NoteEntityType = "candidate"
	NoteEntityJob         NoteEntityType = "job"
	NoteEntityClient      NoteEntityType = "client"
	NoteEntityApplication NoteEntityType = "application"
)

// IsValid reports whether t is a known entity type.
func (t NoteEntityType) IsValid() bool {
	switch t {
	case NoteEntityCandidate, NoteEntityJob, NoteEntityClient, NoteEntityApplication:
		return true
	default:
		return false
	}
}

// Note is a communication note attached to another record.
type Note struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType NoteEntityType `gorm:"type:text;not null;index:idx_notes_entity" json:"entity_type"`
	EntityID   uint           `gorm:"not null;index:idx_notes_entity" json:"entity_id"`
	Category   string         `gorm:"type:text" json:"category"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}

// Edited reports whether the note changed after creation.
func (n *Note) Edited() bool {
	return n.UpdatedAt.After(n.CreatedAt.Add(time.Second))
}
