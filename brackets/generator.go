package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrScheduleOverflow is returned when the round-one matches do not fit
// into the configured day windows. It must surface before any fixture
// is persisted.
var ErrScheduleOverflow = errors.New("required match time exceeds available tournament days")

// DayWindow is one schedulable window. Start and End are full
// timestamps on the window's day.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// PlannedFixture is a single round-one pairing with its scheduled slot.
// Participation ids reference TeamParticipation records.
type PlannedFixture struct {
	Participation1ID int
	Participation2ID int
	StartTime        time.Time
	EndTime          time.Time
}

// Plan is the result of laying out round one. ByeParticipationID is set
// when the entry count was odd; that entry receives an automatic win in
// round two.
type Plan struct {
	Fixtures           []PlannedFixture
	ByeParticipationID *int
}

// Generator produces the round-one layout. Seeding is uniform random:
// every permutation of entries is equally likely.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by rng. A nil rng falls back
// to a time-seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// PlanRoundOne shuffles the entries, pairs them two at a time and walks
// the pairs across the day windows. The aggregate fit check runs before
// any fixture is laid out, so a plan is all-or-nothing.
func (g *Generator) PlanRoundOne(entries []int, days []DayWindow, matchDuration, interval time.Duration) (*Plan, error) {
	if len(days) == 0 {
		return nil, ErrScheduleOverflow
	}

	shuffled := make([]int, len(entries))
	copy(shuffled, entries)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	plan := &Plan{}
	if len(shuffled)%2 == 1 {
		bye := shuffled[len(shuffled)-1]
		shuffled = shuffled[:len(shuffled)-1]
		plan.ByeParticipationID = &bye
	}

	totalMatches := len(shuffled) / 2
	required := time.Duration(totalMatches) * (matchDuration + interval)
	var available time.Duration
	for _, day := range days {
		available += day.End.Sub(day.Start)
	}
	if required > available {
		return nil, fmt.Errorf("%w: need %v, have %v", ErrScheduleOverflow, required, available)
	}

	dayIdx := 0
	currentTime := days[0].Start
	plan.Fixtures = make([]PlannedFixture, 0, totalMatches)

	for i := 0; i+1 < len(shuffled); i += 2 {
		// Roll over to the next day when the match no longer fits in
		// the current window. The aggregate check above does not rule
		// out fragmentation: total time can suffice while no single
		// window holds a full match.
		for currentTime.Add(matchDuration).After(days[dayIdx].End) {
			dayIdx++
			if dayIdx >= len(days) {
				return nil, fmt.Errorf("%w: no remaining day window fits match %d", ErrScheduleOverflow, i/2+1)
			}
			currentTime = days[dayIdx].Start
		}

		plan.Fixtures = append(plan.Fixtures, PlannedFixture{
			Participation1ID: shuffled[i],
			Participation2ID: shuffled[i+1],
			StartTime:        currentTime,
			EndTime:          currentTime.Add(matchDuration),
		})

		currentTime = currentTime.Add(matchDuration + interval)
		if currentTime.After(days[dayIdx].End) && dayIdx+1 < len(days) {
			dayIdx++
			currentTime = days[dayIdx].Start
		}
	}

	return plan, nil
}
