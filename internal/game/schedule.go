package game

import (
	"spellblock/internal/types"
)

// Window is one round's timetable in unix seconds.
type Window struct {
	Start          int64
	CommitDeadline int64
	RevealDeadline int64
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// NextWindow picks the slot a round opened at now should use: the current
// slot while its commit window is still open, otherwise the next one. The
// window never starts before notBefore.
func NextWindow(s types.Schedule, now int64, notBefore int64) (Window, error) {
	if err := s.Validate(); err != nil {
		return Window{}, types.ErrInvalidRequest.Wrap(err.Error())
	}
	cadence := int64(s.CadenceSecs)
	anchor := s.AnchorSecs % cadence

	start := anchor + floorDiv(now-anchor, cadence)*cadence
	commitEnd, err := addInt64AndU64Checked(start, s.CommitSecs, "commit deadline")
	if err != nil {
		return Window{}, err
	}
	if now >= commitEnd {
		start += cadence
	}
	for start < notBefore {
		start += cadence
	}

	w := Window{Start: start}
	if w.CommitDeadline, err = addInt64AndU64Checked(start, s.CommitSecs, "commit deadline"); err != nil {
		return Window{}, err
	}
	if w.RevealDeadline, err = addInt64AndU64Checked(w.CommitDeadline, s.RevealSecs, "reveal deadline"); err != nil {
		return Window{}, err
	}
	return w, nil
}
