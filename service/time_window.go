package service

import (
	"time"
)

// Time-window policy helpers. All boundaries are UTC calendar boundaries;
// the Unix epoch is a dedicated "never happened" sentinel and is checked
// before any date comparison so it can never be mistaken for a real claim.

// IsEpoch reports whether t carries the "never happened" sentinel.
func IsEpoch(t time.Time) bool {
	return t.IsZero() || t.Unix() <= 0
}

// SameUTCDay reports whether a and b fall on the same UTC calendar date.
// An epoch sentinel on either side never counts as the same day.
func SameUTCDay(a, b time.Time) bool {
	if IsEpoch(a) || IsEpoch(b) {
		return false
	}
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// WithinCooldown reports whether now is still inside the cooldown window
// started at last. An epoch last means no cooldown applies.
func WithinCooldown(now, last time.Time, window time.Duration) bool {
	if IsEpoch(last) {
		return false
	}
	return now.Sub(last) < window
}

// NextUTCMidnight returns the smallest UTC-day boundary strictly after now.
func NextUTCMidnight(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, 1)
}

// NewCalendarMonth reports whether now is in a different UTC calendar month
// than the stored snapshot timestamp. An epoch snapshot always reads as a
// new month so the first access of an account seeds its snapshot.
func NewCalendarMonth(now, snapshot time.Time) bool {
	if IsEpoch(snapshot) {
		return true
	}
	now = now.UTC()
	snapshot = snapshot.UTC()
	return now.Year() != snapshot.Year() || now.Month() != snapshot.Month()
}

// IsYesterdayUTC reports whether t falls on the UTC calendar day immediately
// before now's. Used for check-in streak continuation.
func IsYesterdayUTC(now, t time.Time) bool {
	if IsEpoch(t) {
		return false
	}
	return SameUTCDay(now.UTC().AddDate(0, 0, -1), t)
}
