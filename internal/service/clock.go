package service

import (
	"time"

	"github.com/noah-isme/matricula-api/internal/models"
)

// Clock yields the current instant in the institution's time zone. Enrollment windows
// and period transitions compare calendar dates taken from it.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock for loc, defaulting to UTC.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today returns the current calendar date.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.CivilDate(now().In(loc))
}
