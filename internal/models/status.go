package models

import "strings"

// Status is the bucket a game sits in. It is stored through the quest_game_status
// lookup table but always travels by name above the repository.
type Status string

const (
	StatusOngoing      Status = "ongoing"
	StatusBacklog      Status = "backlog"
	StatusCompleted    Status = "completed"
	StatusOnHold       Status = "on_hold"
	StatusDropped      Status = "dropped"
	StatusUndiscovered Status = "undiscovered"
)

// Statuses lists every status in lookup-table order.
var Statuses = []Status{
	StatusOngoing,
	StatusBacklog,
	StatusCompleted,
	StatusOnHold,
	StatusDropped,
	StatusUndiscovered,
}

// ParseStatus accepts a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

// Ranked reports whether members of the bucket carry a priority.
func (s Status) Ranked() bool {
	return s != StatusUndiscovered
}

func (s Status) String() string {
	return string(s)
}
