package domain

// Athlete is a registered user of the tracker.
type Athlete struct {
	ID       string
	Username string
}
