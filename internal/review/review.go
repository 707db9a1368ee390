// Package review holds the offer/match state machine. Every function takes
// the full match set of one offer and returns the new offer state plus the
// matches that changed, so callers can apply the result in one transaction.
package review

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"go-offer-match/internal/model"
)

var (
	// ErrMatchNotInSet is returned when the match does not belong to the offer's match set
	ErrMatchNotInSet = errors.New("match does not belong to offer")

	// ErrInvalidTransition is returned when a match is moved out of a terminal status
	ErrInvalidTransition = errors.New("invalid match status transition")

	// ErrAlreadyMatched is returned when another match of the offer is already approved
	ErrAlreadyMatched = errors.New("offer already has an approved match")
)

// DefaultAutoApproveThreshold is the top-candidate score at which ingestion
// approves without a human.
const DefaultAutoApproveThreshold = 0.88

// Actor identifies who made a decision and when.
type Actor struct {
	ID string
	At time.Time
}

// Outcome is the result of one transition.
type Outcome struct {
	Offer   model.Offer
	Changed []model.Match
}

// AutoDecide applies the ingestion policy to freshly ranked candidates.
// matches must be in rank order. No candidates leaves the offer untouched.
func AutoDecide(offer model.Offer, matches []model.Match, threshold float64) Outcome {
	out := Outcome{Offer: offer}
	if len(matches) == 0 {
		return out
	}

	top := matches[0]
	bestID := top.ID
	out.Offer.BestMatchID = &bestID

	if top.Score >= threshold {
		top.Status = model.MatchApproved
		out.Changed = append(out.Changed, top)
		out.Offer.Status = model.OfferMatched
		return out
	}

	out.Offer.Status = model.OfferNeedsReview
	return out
}

// Approve approves one match of the offer and rejects its open siblings.
// Re-approving the approved match re-asserts the same end state.
func Approve(offer model.Offer, matches []model.Match, matchID uuid.UUID, actor Actor) (Outcome, error) {
	set := cloneMatches(matches)
	idx := indexOf(set, matchID)
	if idx < 0 {
		return Outcome{}, ErrMatchNotInSet
	}

	target := &set[idx]
	if target.Status == model.MatchRejected {
		return Outcome{}, ErrInvalidTransition
	}
	for i := range set {
		if i != idx && set[i].Status == model.MatchApproved {
			return Outcome{}, ErrAlreadyMatched
		}
	}

	out := Outcome{Offer: offer}
	if target.Status == model.MatchCandidate {
		target.Status = model.MatchApproved
		stamp(target, actor)
		out.Changed = append(out.Changed, *target)
	}

	bestID := target.ID
	out.Offer.Status = model.OfferMatched
	out.Offer.BestMatchID = &bestID

	out.Changed = append(out.Changed, rejectOpen(set, idx, actor)...)
	return out, nil
}

// Reject rejects one match. When no open candidate remains the offer goes
// back to "new" even if it holds an approval; the pointer to an approved match
// is kept. A provisional pointer to the rejected match moves to the best
// remaining candidate. Rejecting an already rejected match changes nothing.
func Reject(offer model.Offer, matches []model.Match, matchID uuid.UUID, actor Actor) (Outcome, error) {
	set := cloneMatches(matches)
	idx := indexOf(set, matchID)
	if idx < 0 {
		return Outcome{}, ErrMatchNotInSet
	}

	target := &set[idx]
	switch target.Status {
	case model.MatchApproved:
		return Outcome{}, ErrInvalidTransition
	case model.MatchRejected:
		return Outcome{Offer: offer}, nil
	}

	out := Outcome{Offer: offer}
	target.Status = model.MatchRejected
	stamp(target, actor)
	out.Changed = append(out.Changed, *target)

	approved := findStatus(set, model.MatchApproved)
	best := bestCandidate(set)

	switch {
	case best == nil:
		out.Offer.Status = model.OfferNew
		out.Offer.BestMatchID = nil
		if approved != nil {
			id := approved.ID
			out.Offer.BestMatchID = &id
		}
	case approved != nil:
		id := approved.ID
		out.Offer.Status = model.OfferMatched
		out.Offer.BestMatchID = &id
	default:
		out.Offer.Status = model.OfferNeedsReview
		if out.Offer.BestMatchID == nil || *out.Offer.BestMatchID == target.ID {
			id := best.ID
			out.Offer.BestMatchID = &id
		}
	}
	return out, nil
}

// AssertManual records a manually created, already approved match for the
// offer and closes its open candidates. manual must be a new match.
func AssertManual(offer model.Offer, matches []model.Match, manual model.Match, actor Actor) (Outcome, error) {
	set := cloneMatches(matches)
	if findStatus(set, model.MatchApproved) != nil {
		return Outcome{}, ErrAlreadyMatched
	}

	manual.Status = model.MatchApproved
	stamp(&manual, actor)

	out := Outcome{Offer: offer}
	out.Changed = append(out.Changed, manual)
	out.Changed = append(out.Changed, rejectOpen(set, -1, actor)...)

	bestID := manual.ID
	out.Offer.Status = model.OfferMatched
	out.Offer.BestMatchID = &bestID
	return out, nil
}

func rejectOpen(set []model.Match, skip int, actor Actor) []model.Match {
	var changed []model.Match
	for i := range set {
		if i == skip || set[i].Status != model.MatchCandidate {
			continue
		}
		set[i].Status = model.MatchRejected
		stamp(&set[i], actor)
		changed = append(changed, set[i])
	}
	return changed
}

func stamp(m *model.Match, actor Actor) {
	at := actor.At
	if at.IsZero() {
		at = time.Now()
	}
	m.ReviewedBy = actor.ID
	m.ReviewedAt = &at
}

// bestCandidate returns the open candidate with the highest score, lowest
// rank first on ties.
func bestCandidate(set []model.Match) *model.Match {
	var best *model.Match
	for i := range set {
		m := &set[i]
		if m.Status != model.MatchCandidate {
			continue
		}
		if best == nil || m.Score > best.Score || (m.Score == best.Score && m.Rank < best.Rank) {
			best = m
		}
	}
	return best
}

func findStatus(set []model.Match, status model.MatchStatus) *model.Match {
	for i := range set {
		if set[i].Status == status {
			return &set[i]
		}
	}
	return nil
}

func indexOf(set []model.Match, id uuid.UUID) int {
	for i := range set {
		if set[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneMatches(matches []model.Match) []model.Match {
	return append([]model.Match(nil), matches...)
}
