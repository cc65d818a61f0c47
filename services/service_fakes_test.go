package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
)

// Hand-written repository fakes backed by in-memory maps. Only the methods
// the tests reach have real behaviour; write methods record their calls so
// tests can assert nothing was persisted.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransactor runs the unit directly against the fakes; they ignore the
// executor, so a nil one stands in for the transaction.
type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) InTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) BroadcastStageEvent(stageID int, event string, payload interface{}) {
	n.events = append(n.events, event)
}

type fakeStageRepo struct {
	stages        map[int]*models.Stage
	nextID        int
	statusUpdates []models.StageStatus
}

func newFakeStageRepo(stages ...*models.Stage) *fakeStageRepo {
	repo := &fakeStageRepo{stages: make(map[int]*models.Stage)}
	for _, stage := range stages {
		repo.stages[stage.ID] = stage
		if stage.ID > repo.nextID {
			repo.nextID = stage.ID
		}
	}
	return repo
}

func (r *fakeStageRepo) Create(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error {
	if stage.ID == 0 {
		r.nextID++
		stage.ID = r.nextID
	}
	r.stages[stage.ID] = stage
	return nil
}

func (r *fakeStageRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Stage, error) {
	stage, ok := r.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	copied := *stage
	return &copied, nil
}

func (r *fakeStageRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Stage, error) {
	return nil, nil
}

func (r *fakeStageRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.StageStatus) error {
	r.statusUpdates = append(r.statusUpdates, status)
	if stage, ok := r.stages[id]; ok {
		stage.Status = status
	}
	return nil
}

func (r *fakeStageRepo) UpdateSettings(ctx context.Context, exec repositories.SQLExecutor, id int, settings models.StageSettings) error {
	return nil
}

func (r *fakeStageRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	delete(r.stages, id)
	return nil
}

type fakeStageTeamRepo struct {
	byStage map[int][]*models.StageTeam
	created []*models.StageTeam
}

func newFakeStageTeamRepo() *fakeStageTeamRepo {
	return &fakeStageTeamRepo{byStage: make(map[int][]*models.StageTeam)}
}

func (r *fakeStageTeamRepo) add(stageID int, teamIDs ...int) {
	for i, teamID := range teamIDs {
		r.byStage[stageID] = append(r.byStage[stageID], &models.StageTeam{
			StageID: stageID, TeamID: teamID, Seed: i + 1,
		})
	}
}

func (r *fakeStageTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, st *models.StageTeam) error {
	r.created = append(r.created, st)
	r.byStage[st.StageID] = append(r.byStage[st.StageID], st)
	return nil
}

func (r *fakeStageTeamRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, entries []*models.StageTeam) error {
	for _, st := range entries {
		if err := r.Create(ctx, exec, st); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeStageTeamRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, includeTeam bool) ([]*models.StageTeam, error) {
	return r.byStage[stageID], nil
}

func (r *fakeStageTeamRepo) ListTeamIDsByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]int, error) {
	ids := make([]int, 0, len(r.byStage[stageID]))
	for _, st := range r.byStage[stageID] {
		ids = append(ids, st.TeamID)
	}
	return ids, nil
}

func (r *fakeStageTeamRepo) UpdateGroup(ctx context.Context, exec repositories.SQLExecutor, id int, groupID *int) error {
	return nil
}

func (r *fakeStageTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	return nil
}

func (r *fakeStageTeamRepo) DeleteByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) error {
	delete(r.byStage, stageID)
	return nil
}

type fakeGroupRepo struct {
	byStage map[int][]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{byStage: make(map[int][]*models.Group)}
}

func (r *fakeGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	r.byStage[group.StageID] = append(r.byStage[group.StageID], group)
	return nil
}

func (r *fakeGroupRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.Group, error) {
	return r.byStage[stageID], nil
}

func (r *fakeGroupRepo) DeleteByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) error {
	delete(r.byStage, stageID)
	return nil
}

type fakeFixtureRepo struct {
	byStage map[int][]*models.Fixture
	byID    map[int]*models.Fixture
	nextID  int

	resultUpdates      []*models.Fixture
	statusUpdates      []models.FixtureStatus
	advancementUpdates int
	stageDeletes       int
}

func newFakeFixtureRepo(fixtures ...*models.Fixture) *fakeFixtureRepo {
	repo := &fakeFixtureRepo{
		byStage: make(map[int][]*models.Fixture),
		byID:    make(map[int]*models.Fixture),
	}
	for _, f := range fixtures {
		repo.byStage[f.StageID] = append(repo.byStage[f.StageID], f)
		repo.byID[f.ID] = f
		if f.ID > repo.nextID {
			repo.nextID = f.ID
		}
	}
	return repo
}

func (r *fakeFixtureRepo) Create(ctx context.Context, exec repositories.SQLExecutor, fixture *models.Fixture) error {
	if fixture.ID == 0 {
		r.nextID++
		fixture.ID = r.nextID
	}
	r.byStage[fixture.StageID] = append(r.byStage[fixture.StageID], fixture)
	r.byID[fixture.ID] = fixture
	return nil
}

func (r *fakeFixtureRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, fixtures []*models.Fixture) error {
	for _, f := range fixtures {
		if err := r.Create(ctx, exec, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFixtureRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Fixture, error) {
	fixture, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	copied := *fixture
	return &copied, nil
}

func (r *fakeFixtureRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.Fixture, error) {
	return r.byStage[stageID], nil
}

func (r *fakeFixtureRepo) CountByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) (int, error) {
	return len(r.byStage[stageID]), nil
}

func (r *fakeFixtureRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, fixture *models.Fixture) error {
	r.resultUpdates = append(r.resultUpdates, fixture)
	if f, ok := r.byID[fixture.ID]; ok {
		f.ScoreA, f.ScoreB = fixture.ScoreA, fixture.ScoreB
		f.ScoreDetails = fixture.ScoreDetails
		f.WinnerTeamID = fixture.WinnerTeamID
		f.Status = fixture.Status
	}
	return nil
}

func (r *fakeFixtureRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.FixtureStatus) error {
	r.statusUpdates = append(r.statusUpdates, status)
	if f, ok := r.byID[id]; ok {
		f.Status = status
	}
	return nil
}

func (r *fakeFixtureRepo) UpdateTeams(ctx context.Context, exec repositories.SQLExecutor, id int, teamAID, teamBID *int) error {
	if f, ok := r.byID[id]; ok {
		f.TeamAID, f.TeamBID = teamAID, teamBID
	}
	return nil
}

func (r *fakeFixtureRepo) UpdateAdvancement(ctx context.Context, exec repositories.SQLExecutor, id int, nextFixtureID, winnerToSlot, loserNextFixtureID, loserToSlot *int) error {
	r.advancementUpdates++
	if f, ok := r.byID[id]; ok {
		f.NextFixtureID, f.WinnerToSlot = nextFixtureID, winnerToSlot
		f.LoserNextFixtureID, f.LoserToSlot = loserNextFixtureID, loserToSlot
	}
	return nil
}

func (r *fakeFixtureRepo) DeleteByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) error {
	r.stageDeletes++
	for _, f := range r.byStage[stageID] {
		delete(r.byID, f.ID)
	}
	delete(r.byStage, stageID)
	return nil
}

type fakeRankingRepo struct {
	byStage  map[int][]*models.Ranking
	replaces int
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{byStage: make(map[int][]*models.Ranking)}
}

func (r *fakeRankingRepo) ReplaceForStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, rows []*models.Ranking) error {
	r.replaces++
	r.byStage[stageID] = rows
	return nil
}

func (r *fakeRankingRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.Ranking, error) {
	return r.byStage[stageID], nil
}

func (r *fakeRankingRepo) ListByStageAndGroup(ctx context.Context, exec repositories.SQLExecutor, stageID, groupID int) ([]*models.Ranking, error) {
	rows := make([]*models.Ranking, 0)
	for _, row := range r.byStage[stageID] {
		if row.GroupID != nil && *row.GroupID == groupID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakePromoRepo struct {
	byStage map[int]*models.StagePromotion
	deletes int
}

func newFakePromoRepo(promos ...*models.StagePromotion) *fakePromoRepo {
	repo := &fakePromoRepo{byStage: make(map[int]*models.StagePromotion)}
	for _, promo := range promos {
		repo.byStage[promo.StageID] = promo
	}
	return repo
}

func (r *fakePromoRepo) Create(ctx context.Context, exec repositories.SQLExecutor, promo *models.StagePromotion) error {
	if _, exists := r.byStage[promo.StageID]; exists {
		return repositories.ErrStagePromotionConflict
	}
	r.byStage[promo.StageID] = promo
	return nil
}

func (r *fakePromoRepo) GetByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) (*models.StagePromotion, error) {
	promo, ok := r.byStage[stageID]
	if !ok {
		return nil, repositories.ErrStagePromotionNotFound
	}
	return promo, nil
}

func (r *fakePromoRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.deletes++
	for stageID, promo := range r.byStage {
		if promo.ID == id {
			delete(r.byStage, stageID)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	appended []*models.PromotionAudit
}

func (r *fakeAuditRepo) Append(ctx context.Context, exec repositories.SQLExecutor, audit *models.PromotionAudit) error {
	r.appended = append(r.appended, audit)
	return nil
}

func (r *fakeAuditRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.PromotionAudit, error) {
	rows := make([]*models.PromotionAudit, 0)
	for _, audit := range r.appended {
		if audit.StageID == stageID {
			rows = append(rows, audit)
		}
	}
	return rows, nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, team := range teams {
		repo.teams[team.ID] = team
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		if team, ok := r.teams[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) List(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	return nil, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	return nil
}
