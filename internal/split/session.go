// Package split maintains the proportional bill allocation of a table
// session: a percentage share per (cart line, participant) pair that is
// kept normalized to exactly 100 per line through every mutation.
package split

import (
	"errors"
	"fmt"

	"github.com/ergowatches/served/internal/models"

	"github.com/lucsky/cuid"
)

const (
	// MinParticipants is the floor below which removal is rejected.
	MinParticipants = 2
	// ShareStep is the fixed adjustment step in percentage points.
	ShareStep = 5.0
)

var (
	ErrMinParticipants    = errors.New("cannot remove below minimum of two participants")
	ErrShareOutOfRange    = errors.New("share adjustment would leave [0, 100]")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrUnknownLine        = errors.New("unknown cart line")
)

// Direction of a share adjustment.
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

type Participant struct {
	ID   string
	Name string
}

// Session holds the per-line, per-participant percentage table for one
// bill. All mutations either succeed keeping every line's shares summing
// to 100, or reject as no-ops, so button handlers can call them
// unconditionally.
type Session struct {
	lines        []models.CartLine
	participants []Participant
	// shares[lineItemID][participantID] is a percentage in [0, 100]
	shares map[string]map[string]float64
}

// NewSession starts a split over the given lines with two participants,
// each line divided equally.
func NewSession(lines []models.CartLine, firstName, secondName string) *Session {
	s := &Session{
		lines:  lines,
		shares: make(map[string]map[string]float64, len(lines)),
	}
	for _, line := range lines {
		s.shares[line.ItemID] = make(map[string]float64, MinParticipants)
	}
	s.addParticipant(firstName)
	s.addParticipant(secondName)
	return s
}

func (s *Session) Participants() []Participant {
	out := make([]Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

func (s *Session) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Shares returns a copy of the percentage table for one line, keyed by
// participant ID.
func (s *Session) Shares(itemID string) (map[string]float64, error) {
	line, ok := s.shares[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, itemID)
	}
	out := make(map[string]float64, len(line))
	for pid, share := range line {
		out[pid] = share
	}
	return out, nil
}

// AddParticipant scales every existing share by P/(P+1) and hands the
// newcomer 100/(P+1) of each line, preserving the per-line sum of 100.
func (s *Session) AddParticipant(name string) Participant {
	return s.addParticipant(name)
}

func (s *Session) addParticipant(name string) Participant {
	p := Participant{ID: cuid.New(), Name: name}
	oldCount := float64(len(s.participants))
	newCount := oldCount + 1

	for _, line := range s.shares {
		if oldCount > 0 {
			factor := oldCount / newCount
			for pid := range line {
				line[pid] *= factor
			}
		}
		line[p.ID] = 100 / newCount
	}
	s.participants = append(s.participants, p)
	return p
}

// RemoveParticipant redistributes the leaver's share of each line to the
// remaining participants in proportion to their existing shares on that
// line, or equally when those sum to zero. Rejected at the floor of two.
func (s *Session) RemoveParticipant(id string) error {
	if len(s.participants) <= MinParticipants {
		return ErrMinParticipants
	}
	idx := -1
	for i, p := range s.participants {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}

	for itemID, line := range s.shares {
		removed := line[id]
		delete(line, id)

		var remaining float64
		for _, share := range line {
			remaining += share
		}
		if remaining > 0 {
			for pid, share := range line {
				line[pid] = share + removed*(share/remaining)
			}
		} else {
			equal := removed / float64(len(line))
			for pid := range line {
				line[pid] = equal
			}
		}
		s.NormalizeShares(itemID)
	}

	s.participants = append(s.participants[:idx], s.participants[idx+1:]...)
	return nil
}

// AdjustShare moves one participant's share of a line by ShareStep in the
// given direction. Steps that would leave [0, 100] are rejected without
// touching state. The complementary shares absorb the change
// proportionally before the line is renormalized.
func (s *Session) AdjustShare(itemID, participantID string, dir Direction) error {
	line, ok := s.shares[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, itemID)
	}
	current, ok := line[participantID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	}

	delta := ShareStep * float64(dir)
	next := current + delta
	if next < 0 || next > 100 {
		return ErrShareOutOfRange
	}

	sumOthers := 0.0
	for pid, share := range line {
		if pid != participantID {
			sumOthers += share
		}
	}
	if sumOthers > 0 {
		factor := 1 - delta/sumOthers
		for pid, share := range line {
			if pid != participantID {
				line[pid] = share * factor
			}
		}
	}
	line[participantID] = next

	s.NormalizeShares(itemID)
	return nil
}

// NormalizeShares rescales one line's shares so they sum to exactly 100,
// repairing floating-point drift. A zero-sum line falls back to an equal
// split.
func (s *Session) NormalizeShares(itemID string) {
	line, ok := s.shares[itemID]
	if !ok || len(line) == 0 {
		return
	}
	var sum float64
	for _, share := range line {
		sum += share
	}
	if sum <= 0 {
		equal := 100 / float64(len(line))
		for pid := range line {
			line[pid] = equal
		}
		return
	}
	for pid, share := range line {
		line[pid] = share / sum * 100
	}
}

// Subtotal is the undiscounted order total.
func (s *Session) Subtotal() float64 {
	var sum float64
	for _, line := range s.lines {
		sum += line.Total()
	}
	return sum
}

// Totals derives each participant's monetary total, with the discount
// spread proportionally across participants rather than taken off one
// bill. A zero subtotal defines the discount ratio as 1 to avoid a
// division by zero. Results are rounded for display.
func (s *Session) Totals(discount *models.Discount) map[string]float64 {
	subtotal := s.Subtotal()
	ratio := 1.0
	if discount != nil && subtotal > 0 {
		ratio = (subtotal - discount.AmountOff(subtotal)) / subtotal
	}

	totals := make(map[string]float64, len(s.participants))
	for _, p := range s.participants {
		var raw float64
		for _, line := range s.lines {
			raw += line.Total() * s.shares[line.ItemID][p.ID] / 100
		}
		totals[p.ID] = roundCurrency(raw * ratio)
	}
	return totals
}

func roundCurrency(amount float64) float64 {
	const cents = 100
	if amount >= 0 {
		return float64(int64(amount*cents+0.5)) / cents
	}
	return float64(int64(amount*cents-0.5)) / cents
}
