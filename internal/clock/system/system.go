// Package system provides the wall clock used to date emitted artifacts.
package system

import "time"

// Clock implements award.Clock.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
