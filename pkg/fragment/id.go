package fragment

import "github.com/google/uuid"

// NewID returns a fresh time-ordered fragment id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// EnsureIDs gives every fragment without an id a new one and returns how
// many were assigned.
func EnsureIDs(frags []Fragment) int {
	n := 0
	for i := range frags {
		if frags[i].ID == "" {
			frags[i].ID = NewID()
			n++
		}
	}
	return n
}
