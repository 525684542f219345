package service

import "time"

// GuideLeavePolicy decides what happens to a tour when its guide leaves.
type GuideLeavePolicy string

const (
	// CloseTour deletes the tour as soon as the guide leaves.
	CloseTour GuideLeavePolicy = "close-tour"
	// KeepTour keeps the tour while participants remain, so a guide can rejoin.
	KeepTour GuideLeavePolicy = "keep-tour"
)

// DuplicateUserPolicy decides what happens when a different connection claims
// a user id already bound in the same tour.
type DuplicateUserPolicy string

const (
	RejectDuplicate  DuplicateUserPolicy = "reject"
	ReplaceDuplicate DuplicateUserPolicy = "replace"
)

const DefaultPingInterval = 30 * time.Second

type Options struct {
	PingInterval        time.Duration
	GuideLeavePolicy    GuideLeavePolicy
	DuplicateUserPolicy DuplicateUserPolicy
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.GuideLeavePolicy == "" {
		o.GuideLeavePolicy = CloseTour
	}
	if o.DuplicateUserPolicy == "" {
		o.DuplicateUserPolicy = RejectDuplicate
	}
	return o
}
