package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/schoolsports/tournament-engine/brackets"
	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

// fakeDB is the shared in-memory backing store for the fake
// repositories. Ids are globally monotonic, so id order matches
// creation order the same way serial columns do.
type fakeDB struct {
	lastID int

	schools              map[int]*models.School
	teams                map[int]*models.Team
	versions             map[int][]*models.TeamVersion
	participations       map[int]*models.TeamParticipation
	tournaments          map[int]*models.Tournament
	days                 map[int][]models.TournamentDay
	participatingSchools map[int][]int
	fixtures             map[int]*models.Fixture
	results              map[int]*models.MatchResult
	scoreLog             []*models.ScoreLogEntry
	events               map[int]*models.CalendarEvent
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		schools:              make(map[int]*models.School),
		teams:                make(map[int]*models.Team),
		versions:             make(map[int][]*models.TeamVersion),
		participations:       make(map[int]*models.TeamParticipation),
		tournaments:          make(map[int]*models.Tournament),
		days:                 make(map[int][]models.TournamentDay),
		participatingSchools: make(map[int][]int),
		fixtures:             make(map[int]*models.Fixture),
		results:              make(map[int]*models.MatchResult),
		events:               make(map[int]*models.CalendarEvent),
	}
}

func (d *fakeDB) nextID() int {
	d.lastID++
	return d.lastID
}

// fakeUnitOfWork runs the callback directly; the fakes have no
// transactions to manage.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Do(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeSchoolRepo struct{ db *fakeDB }

func (r *fakeSchoolRepo) Create(_ context.Context, _ repositories.SQLExecutor, school *models.School) error {
	for _, existing := range r.db.schools {
		if existing.Name == school.Name {
			return repositories.ErrSchoolNameConflict
		}
	}
	school.ID = r.db.nextID()
	stored := *school
	r.db.schools[school.ID] = &stored
	return nil
}

func (r *fakeSchoolRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.School, error) {
	school, ok := r.db.schools[id]
	if !ok {
		return nil, repositories.ErrSchoolNotFound
	}
	copied := *school
	return &copied, nil
}

func (r *fakeSchoolRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]*models.School, error) {
	out := make([]*models.School, 0, len(r.db.schools))
	for _, school := range r.db.schools {
		copied := *school
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeTeamRepo struct{ db *fakeDB }

func (r *fakeTeamRepo) ListBySchoolAndSport(_ context.Context, _ repositories.SQLExecutor, schoolID int, sport models.SportType) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for _, team := range r.db.teams {
		if team.SchoolID == schoolID && team.SportType == sport && !team.IsPlaceholder {
			copied := *team
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) CreatePlaceholder(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.db.nextID()
	team.IsPlaceholder = true
	stored := *team
	r.db.teams[team.ID] = &stored
	return nil
}

func (r *fakeTeamRepo) LatestVersion(_ context.Context, _ repositories.SQLExecutor, teamID int) (*models.TeamVersion, error) {
	versions := r.db.versions[teamID]
	if len(versions) == 0 {
		return nil, repositories.ErrTeamVersionNotFound
	}
	latest := versions[0]
	for _, v := range versions[1:] {
		if v.Version > latest.Version {
			latest = v
		}
	}
	copied := *latest
	return &copied, nil
}

type fakeParticipationRepo struct{ db *fakeDB }

func (r *fakeParticipationRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.TeamParticipation) error {
	p.ID = r.db.nextID()
	stored := *p
	stored.Team = nil
	r.db.participations[p.ID] = &stored
	return nil
}

func (r *fakeParticipationRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.TeamParticipation, error) {
	p, ok := r.db.participations[id]
	if !ok {
		return nil, repositories.ErrParticipationNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipationRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.TeamParticipation, error) {
	out := make([]*models.TeamParticipation, 0)
	for _, p := range r.db.participations {
		if p.TournamentID != tournamentID {
			continue
		}
		copied := *p
		if team, ok := r.db.teams[p.TeamID]; ok {
			teamCopy := *team
			copied.Team = &teamCopy
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipationRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, p := range r.db.participations {
		if p.TournamentID == tournamentID {
			delete(r.db.participations, id)
		}
	}
	return nil
}

type fakeTournamentRepo struct{ db *fakeDB }

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.db.nextID()
	stored := *t
	stored.Days = nil
	stored.Fixtures = nil
	r.db.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	if _, ok := r.db.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	stored := *t
	stored.Days = nil
	stored.Fixtures = nil
	r.db.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.db.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) ListBySchool(_ context.Context, _ repositories.SQLExecutor, schoolID int) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for tournamentID, schools := range r.db.participatingSchools {
		for _, id := range schools {
			if id != schoolID {
				continue
			}
			t, ok := r.db.tournaments[tournamentID]
			if !ok || t.Status == models.TournamentDeleted {
				continue
			}
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) CreateDay(_ context.Context, _ repositories.SQLExecutor, day *models.TournamentDay) error {
	day.ID = r.db.nextID()
	r.db.days[day.TournamentID] = append(r.db.days[day.TournamentID], *day)
	return nil
}

func (r *fakeTournamentRepo) ListDays(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.TournamentDay, error) {
	return append([]models.TournamentDay(nil), r.db.days[tournamentID]...), nil
}

func (r *fakeTournamentRepo) DeleteDays(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	delete(r.db.days, tournamentID)
	return nil
}

func (r *fakeTournamentRepo) AddParticipatingSchool(_ context.Context, _ repositories.SQLExecutor, tournamentID, schoolID int) error {
	for _, existing := range r.db.participatingSchools[tournamentID] {
		if existing == schoolID {
			return repositories.ErrParticipatingSchoolExists
		}
	}
	r.db.participatingSchools[tournamentID] = append(r.db.participatingSchools[tournamentID], schoolID)
	return nil
}

func (r *fakeTournamentRepo) ListParticipatingSchools(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]int, error) {
	return append([]int(nil), r.db.participatingSchools[tournamentID]...), nil
}

func (r *fakeTournamentRepo) DeleteParticipatingSchools(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	delete(r.db.participatingSchools, tournamentID)
	return nil
}

type fakeFixtureRepo struct{ db *fakeDB }

func (r *fakeFixtureRepo) Create(_ context.Context, _ repositories.SQLExecutor, f *models.Fixture) error {
	f.ID = r.db.nextID()
	stored := *f
	r.db.fixtures[f.ID] = &stored
	return nil
}

func (r *fakeFixtureRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Fixture, error) {
	f, ok := r.db.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFixtureRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Fixture, error) {
	out := r.collect(func(f *models.Fixture) bool { return f.TournamentID == tournamentID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeFixtureRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]*models.Fixture, error) {
	out := r.collect(func(f *models.Fixture) bool {
		return f.TournamentID == tournamentID && f.Round == round
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFixtureRepo) collect(match func(*models.Fixture) bool) []*models.Fixture {
	out := make([]*models.Fixture, 0)
	for _, f := range r.db.fixtures {
		if match(f) {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeFixtureRepo) CountWithoutWinner(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, f := range r.db.fixtures {
		if f.TournamentID == tournamentID && f.WinnerID == nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeFixtureRepo) UpdateWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerID int, status models.FixtureStatus, isBye bool) error {
	f, ok := r.db.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	w := winnerID
	f.WinnerID = &w
	f.Status = status
	f.IsBye = isBye
	return nil
}

func (r *fakeFixtureRepo) UpdateSlots(_ context.Context, _ repositories.SQLExecutor, id int, p1, p2 *int, status models.FixtureStatus, playersTracked bool) error {
	f, ok := r.db.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	f.Participation1ID = p1
	f.Participation2ID = p2
	f.Status = status
	f.PlayersTracked = playersTracked
	return nil
}

func (r *fakeFixtureRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.FixtureStatus) error {
	f, ok := r.db.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	f.Status = status
	return nil
}

func (r *fakeFixtureRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, id int, start, end sql.NullTime, location *string) error {
	f, ok := r.db.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if start.Valid {
		f.StartTime = start.Time
	}
	if end.Valid {
		f.EndTime = end.Time
	}
	if location != nil {
		f.Location = location
	}
	return nil
}

func (r *fakeFixtureRepo) UpdateNextFixture(_ context.Context, _ repositories.SQLExecutor, id int, nextFixtureID, nextSlot *int) error {
	f, ok := r.db.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	f.NextFixtureID = nextFixtureID
	f.NextSlot = nextSlot
	return nil
}

func (r *fakeFixtureRepo) HasFeeder(_ context.Context, _ repositories.SQLExecutor, fixtureID, slot int) (bool, error) {
	for _, f := range r.db.fixtures {
		if f.NextFixtureID != nil && *f.NextFixtureID == fixtureID && f.NextSlot != nil && *f.NextSlot == slot {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFixtureRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.db.fixtures[id]; !ok {
		return repositories.ErrFixtureNotFound
	}
	delete(r.db.fixtures, id)
	return nil
}

func (r *fakeFixtureRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, f := range r.db.fixtures {
		if f.TournamentID == tournamentID {
			delete(r.db.fixtures, id)
		}
	}
	return nil
}

type fakeResultRepo struct{ db *fakeDB }

func (r *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, result *models.MatchResult) error {
	result.ID = r.db.nextID()
	stored := *result
	r.db.results[result.ID] = &stored
	return nil
}

func (r *fakeResultRepo) GetByFixture(_ context.Context, _ repositories.SQLExecutor, fixtureID int) (*models.MatchResult, error) {
	for _, result := range r.db.results {
		if result.FixtureID == fixtureID {
			copied := *result
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchResultNotFound
}

func (r *fakeResultRepo) UpdateScore(_ context.Context, _ repositories.SQLExecutor, id int, homeScore, awayScore, finalScore string) error {
	result, ok := r.db.results[id]
	if !ok {
		return repositories.ErrMatchResultNotFound
	}
	result.HomeScore = homeScore
	result.AwayScore = awayScore
	result.FinalScore = finalScore
	return nil
}

func (r *fakeResultRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, result := range r.db.results {
		if f, ok := r.db.fixtures[result.FixtureID]; ok && f.TournamentID == tournamentID {
			delete(r.db.results, id)
		}
	}
	return nil
}

type fakeScoreLogRepo struct{ db *fakeDB }

func (r *fakeScoreLogRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.ScoreLogEntry) error {
	entry.ID = r.db.nextID()
	stored := *entry
	r.db.scoreLog = append(r.db.scoreLog, &stored)
	return nil
}

func (r *fakeScoreLogRepo) ListByFixture(_ context.Context, _ repositories.SQLExecutor, fixtureID int) ([]*models.ScoreLogEntry, error) {
	out := make([]*models.ScoreLogEntry, 0)
	for _, entry := range r.db.scoreLog {
		if entry.FixtureID == fixtureID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeEventRepo struct{ db *fakeDB }

func (r *fakeEventRepo) Create(_ context.Context, _ repositories.SQLExecutor, event *models.CalendarEvent) error {
	event.ID = r.db.nextID()
	stored := *event
	r.db.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.CalendarEvent, error) {
	event, ok := r.db.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) Update(_ context.Context, _ repositories.SQLExecutor, event *models.CalendarEvent) error {
	if _, ok := r.db.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	stored := *event
	r.db.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) UpdateScheduleByFixture(_ context.Context, _ repositories.SQLExecutor, fixtureID int, start, end time.Time) error {
	for _, event := range r.db.events {
		if event.FixtureID != nil && *event.FixtureID == fixtureID {
			event.StartDate = start
			event.EndDate = end
		}
	}
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.db.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.db.events, id)
	return nil
}

func (r *fakeEventRepo) DeleteByFixture(_ context.Context, _ repositories.SQLExecutor, fixtureID int) error {
	for id, event := range r.db.events {
		if event.FixtureID != nil && *event.FixtureID == fixtureID {
			delete(r.db.events, id)
		}
	}
	return nil
}

func (r *fakeEventRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, event := range r.db.events {
		if event.TournamentID != nil && *event.TournamentID == tournamentID {
			delete(r.db.events, id)
		}
	}
	return nil
}

func (r *fakeEventRepo) ListBySchool(_ context.Context, _ repositories.SQLExecutor, schoolID int) ([]*models.CalendarEvent, error) {
	out := make([]*models.CalendarEvent, 0)
	for _, event := range r.db.events {
		if event.SchoolID == schoolID {
			copied := *event
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// testEnv wires every service against one shared fake store, the way
// main wires them against postgres.
type testEnv struct {
	db  *fakeDB
	hub *live.Hub

	tournaments TournamentService
	fixtures    FixtureService
	scores      ScoreService
	brackets    BracketService
	schools     SchoolService
	events      EventService
}

func newTestEnv(seed int64) *testEnv {
	db := newFakeDB()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(logger)
	uow := fakeUnitOfWork{}

	schoolRepo := &fakeSchoolRepo{db: db}
	teamRepo := &fakeTeamRepo{db: db}
	participationRepo := &fakeParticipationRepo{db: db}
	tournamentRepo := &fakeTournamentRepo{db: db}
	fixtureRepo := &fakeFixtureRepo{db: db}
	resultRepo := &fakeResultRepo{db: db}
	scoreLogRepo := &fakeScoreLogRepo{db: db}
	eventRepo := &fakeEventRepo{db: db}

	generator := brackets.NewGenerator(rand.New(rand.NewSource(seed)))

	return &testEnv{
		db:  db,
		hub: hub,
		tournaments: NewTournamentService(
			uow, tournamentRepo, schoolRepo, teamRepo, participationRepo,
			fixtureRepo, resultRepo, eventRepo, generator, logger,
		),
		fixtures: NewFixtureService(
			uow, tournamentRepo, fixtureRepo, participationRepo,
			resultRepo, eventRepo, hub, logger,
		),
		scores:   NewScoreService(uow, fixtureRepo, resultRepo, scoreLogRepo, hub, logger),
		brackets: NewBracketService(uow, tournamentRepo, fixtureRepo, participationRepo, logger),
		schools:  NewSchoolService(uow, schoolRepo, logger),
		events:   NewEventService(uow, eventRepo, logger),
	}
}

// seedSchoolWithTeam registers a school plus one real team with a
// current roster version, returning both ids.
func (env *testEnv) seedSchoolWithTeam(name string) (schoolID, teamID int) {
	schoolID = env.db.nextID()
	env.db.schools[schoolID] = &models.School{ID: schoolID, Name: name}

	teamID = env.db.nextID()
	env.db.teams[teamID] = &models.Team{
		ID:        teamID,
		Name:      name + " FC",
		SportType: models.SportFootball,
		SchoolID:  schoolID,
	}
	versionID := env.db.nextID()
	env.db.versions[teamID] = []*models.TeamVersion{
		{ID: versionID, TeamID: teamID, Version: 1},
	}
	return schoolID, teamID
}

// seedSchoolWithoutTeam registers a school with no team of any sport.
func (env *testEnv) seedSchoolWithoutTeam(name string) int {
	schoolID := env.db.nextID()
	env.db.schools[schoolID] = &models.School{ID: schoolID, Name: name}
	return schoolID
}
