package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/model"
)

// Candidate is the interval a caller wants to book, together with the
// identities that drive the three conflict classes.
type Candidate struct {
	Interval    Interval
	StaffID     uuid.UUID
	ClientID    uuid.UUID
	ResourceIDs []uuid.UUID

	// ExcludeID drops one appointment from the conflict set, so a
	// reschedule does not collide with itself.
	ExcludeID uuid.UUID
}

// ConflictResult lists the appointments blocking a candidate. The
// candidate is available only when all three classes are clear.
type ConflictResult struct {
	Available bool
	Conflicts []uuid.UUID
}

// CheckConflicts tests the candidate against a catalogue of existing
// appointments for the same tenant/date range. Staff, client and
// resource conflicts all use the one half-open Overlaps primitive.
//
// Existing appointments are widened by their own stored buffers before
// comparison; the candidate's own buffers are the slot generator's
// concern, so buffers end up symmetric in effect.
func CheckConflicts(c Candidate, existing []*model.Appointment) ConflictResult {
	resources := make(map[uuid.UUID]struct{}, len(c.ResourceIDs))
	for _, id := range c.ResourceIDs {
		resources[id] = struct{}{}
	}

	var conflicts []uuid.UUID
	seen := make(map[uuid.UUID]struct{})

	for _, apt := range existing {
		if apt.ID == c.ExcludeID || !apt.Status.Blocking() {
			continue
		}
		blocked := BufferedInterval(apt)
		if !c.Interval.Overlaps(blocked) {
			continue
		}

		hit := apt.StaffID == c.StaffID || apt.ClientID == c.ClientID
		if !hit {
			for _, rid := range apt.Resources {
				if _, ok := resources[rid]; ok {
					hit = true
					break
				}
			}
		}
		if !hit {
			continue
		}
		if _, dup := seen[apt.ID]; dup {
			continue
		}
		seen[apt.ID] = struct{}{}
		conflicts = append(conflicts, apt.ID)
	}

	return ConflictResult{Available: len(conflicts) == 0, Conflicts: conflicts}
}

// BufferedInterval is the exclusion zone an existing appointment
// projects: its interval extended by its own service buffers.
func BufferedInterval(apt *model.Appointment) Interval {
	iv := Interval{Start: apt.StartTime, End: apt.EndTime}
	return iv.Extend(minutes(apt.BufferBefore), minutes(apt.BufferAfter))
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
