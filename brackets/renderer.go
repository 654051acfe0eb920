package brackets

import (
	"fmt"
	"time"

	"github.com/schoolsports/tournament-engine/models"
)

type NodeState string

const (
	NodeDone    NodeState = "DONE"
	NodePending NodeState = "PENDING"
)

type ParticipantStatus string

const (
	ParticipantNormal   ParticipantStatus = "NORMAL"
	ParticipantWalkOver ParticipantStatus = "WALK_OVER"
	ParticipantNoParty  ParticipantStatus = "NO_PARTY"
)

// BracketParticipant describes one side of a rendered fixture.
type BracketParticipant struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	ResultText string            `json:"result_text"`
	Status     ParticipantStatus `json:"status"`
}

// BracketNode is one display-ready fixture in the bracket tree.
type BracketNode struct {
	FixtureID     int                  `json:"fixture_id"`
	Name          string               `json:"name"`
	NextFixtureID *int                 `json:"next_fixture_id,omitempty"`
	RoundLabel    string               `json:"round_label"`
	StartTime     time.Time            `json:"start_time"`
	State         NodeState            `json:"state"`
	Participants  []BracketParticipant `json:"participants"`
}

const nameTBD = "TBD"

// BuildBracket projects persisted fixtures into a display tree. The
// fixtures must already be ordered by round then creation order; names
// maps participation ids to team names.
func BuildBracket(fixtures []*models.Fixture, names map[int]string) []BracketNode {
	nodes := make([]BracketNode, 0, len(fixtures))

	for i, f := range fixtures {
		nextID := f.NextFixtureID
		if nextID == nil && i+1 < len(fixtures) {
			// No persisted link yet: the sequential successor in round
			// order is the best available forward pointer.
			id := fixtures[i+1].ID
			nextID = &id
		}

		p1 := renderParticipant(f, f.Participation1ID, names)
		p2 := renderParticipant(f, f.Participation2ID, names)
		if f.IsBye {
			p1.Status = ParticipantWalkOver
			p2.Status = ParticipantNoParty
		}

		state := NodePending
		if f.IsBye || f.WinnerID != nil {
			state = NodeDone
		}

		nodes = append(nodes, BracketNode{
			FixtureID:     f.ID,
			Name:          fmt.Sprintf("%s vs %s", p1.Name, p2.Name),
			NextFixtureID: nextID,
			RoundLabel:    fmt.Sprintf("Round %d", f.Round),
			StartTime:     f.StartTime,
			State:         state,
			Participants:  []BracketParticipant{p1, p2},
		})
	}

	return nodes
}

func renderParticipant(f *models.Fixture, participationID *int, names map[int]string) BracketParticipant {
	p := BracketParticipant{Name: nameTBD, Status: ParticipantNormal}
	if participationID == nil {
		return p
	}

	p.ID = *participationID
	if name, ok := names[*participationID]; ok && name != "" {
		p.Name = name
	}

	if f.WinnerID != nil {
		if *f.WinnerID == *participationID {
			p.ResultText = "Won"
		} else {
			p.ResultText = "Lost"
		}
	}
	return p
}
