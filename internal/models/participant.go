package models

// Participant is a roster member who can be attached to a line item to share
// its cost. The roster is fixed for the lifetime of a split session; entries
// are never mutated.
type Participant struct {
	// ID is unique within the session.
	ID int

	// DisplayName is the full name shown in the summary.
	DisplayName string

	// Initials are rendered on the avatar chip.
	Initials string

	// ColorTag is the avatar background color (hex).
	ColorTag string
}

// DefaultRoster returns the built-in participant roster used when no roster
// is configured. It mirrors the demo roster shipped with the web client.
func DefaultRoster() []Participant {
	return []Participant{
		{ID: 1, DisplayName: "John Doe", Initials: "JD", ColorTag: "#6C16C7"},
		{ID: 2, DisplayName: "Alice Smith", Initials: "AS", ColorTag: "#E5446D"},
		{ID: 3, DisplayName: "Bob Johnson", Initials: "BJ", ColorTag: "#2563EB"},
		{ID: 4, DisplayName: "Emma Wilson", Initials: "EW", ColorTag: "#16A34A"},
		{ID: 5, DisplayName: "Mike Brown", Initials: "MB", ColorTag: "#CA8A04"},
	}
}
