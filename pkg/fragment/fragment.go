package fragment

import (
	"slices"
	"time"
)

// Direction is the reading direction of a fragment's text.
type Direction string

// Reading directions.
const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical
}

// Fragment is a content card: text, optional notes, tags, and an optional
// reading direction. Fragments are owned by a store; the layout engine only
// reads them.
type Fragment struct {
	ID        string    `json:"id" bson:"_id"`
	Content   string    `json:"content" bson:"content"`
	Notes     []Note    `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags      []Tag     `json:"tags,omitempty" bson:"tags,omitempty"`
	Direction Direction `json:"direction,omitempty" bson:"direction,omitempty"`

	// Visibility flags. Nil means visible.
	ShowContent *bool `json:"show_content,omitempty" bson:"show_content,omitempty"`
	ShowNote    *bool `json:"show_note,omitempty" bson:"show_note,omitempty"`
	ShowTags    *bool `json:"show_tags,omitempty" bson:"show_tags,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" bson:"updated_at,omitempty"`
}

// Note is a free-text annotation attached to a fragment.
type Note struct {
	ID    string `json:"id,omitempty" bson:"id,omitempty"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
	Value string `json:"value" bson:"value"`
}

// Tag is a label attached to a fragment. Only the number of tags matters
// for layout.
type Tag struct {
	Name string `json:"name" bson:"name"`
}

// NoteText returns the first note's value, or "" when there are no notes.
func (f *Fragment) NoteText() string {
	if len(f.Notes) == 0 {
		return ""
	}
	return f.Notes[0].Value
}

// ContentVisible reports whether the content should be shown.
func (f *Fragment) ContentVisible() bool { return visible(f.ShowContent) }

// NoteVisible reports whether the note should be shown.
func (f *Fragment) NoteVisible() bool { return visible(f.ShowNote) }

// TagsVisible reports whether the tags should be shown.
func (f *Fragment) TagsVisible() bool { return visible(f.ShowTags) }

func visible(b *bool) bool { return b == nil || *b }

// Clone returns a deep copy of f.
func (f Fragment) Clone() Fragment {
	f.Notes = slices.Clone(f.Notes)
	f.Tags = slices.Clone(f.Tags)
	f.ShowContent = cloneBool(f.ShowContent)
	f.ShowNote = cloneBool(f.ShowNote)
	f.ShowTags = cloneBool(f.ShowTags)
	return f
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Bool returns a pointer to v, for populating visibility flags.
func Bool(v bool) *bool { return &v }
