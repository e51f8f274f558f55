package domain

import "fmt"

// Team is the fixed pool of engineers available each working day.
type Team struct {
	name string
	size int
}

// NewTeam validates and constructs a Team. Size must be at least 1.
func NewTeam(name string, size int) (*Team, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidTeam, size)
	}
	return &Team{name: name, size: size}, nil
}

// Name is a descriptive label; it plays no part in scheduling.
func (t *Team) Name() string { return t.name }

// Size is the total number of engineers available each working day.
func (t *Team) Size() int { return t.size }
