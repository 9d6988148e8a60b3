// AngelaMos | 2026
// service_test.go

package visitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlogandesigns/site-visitor-dash/internal/agent"
	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
	"github.com/tlogandesigns/site-visitor-dash/internal/syncer"
)

const (
	testAgentID  = "3f2c8a1e-0000-4000-8000-000000000001"
	otherAgentID = "3f2c8a1e-0000-4000-8000-000000000002"
)

type fakeRepo struct {
	visitors map[string]*Visitor
	notes    map[string][]NoteWithAgent
	synced   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		visitors: make(map[string]*Visitor),
		notes:    make(map[string][]NoteWithAgent),
	}
}

func (f *fakeRepo) Create(_ context.Context, v *Visitor) error {
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	cp := *v
	f.visitors[v.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*VisitorDetail, error) {
	v, ok := f.visitors[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &VisitorDetail{Visitor: *v}, nil
}

func (f *fakeRepo) List(_ context.Context, _ *Query) ([]VisitorDetail, int, error) {
	out := make([]VisitorDetail, 0, len(f.visitors))
	for _, v := range f.visitors {
		out = append(out, VisitorDetail{Visitor: *v})
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListAll(_ context.Context, _ *Query) ([]VisitorDetail, error) {
	out, _, _ := f.List(context.Background(), nil)
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.visitors[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.visitors, id)
	return nil
}

func (f *fakeRepo) MarkSynced(
	_ context.Context,
	id string,
	at time.Time,
	_ *string,
) error {
	v, ok := f.visitors[id]
	if !ok {
		return core.ErrNotFound
	}
	v.CincSynced = true
	v.CincSyncAt = &at
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeRepo) AddNote(_ context.Context, note *Note) error {
	note.CreatedAt = time.Now().UTC()
	f.notes[note.VisitorID] = append(f.notes[note.VisitorID], NoteWithAgent{
		Note: *note,
	})
	return nil
}

func (f *fakeRepo) ListNotes(
	_ context.Context,
	visitorID string,
) ([]NoteWithAgent, error) {
	return f.notes[visitorID], nil
}

func (f *fakeRepo) NotesByVisitor(
	_ context.Context,
	ids []string,
) (map[string][]NoteWithAgent, error) {
	out := make(map[string][]NoteWithAgent)
	for _, id := range ids {
		if notes, ok := f.notes[id]; ok {
			out[id] = notes
		}
	}
	return out, nil
}

func (f *fakeRepo) Stats(
	_ context.Context,
	scope policy.Scope,
	_ string,
) (*StatsResponse, error) {
	stats := &StatsResponse{GeneratedAt: time.Now().UTC()}
	for _, v := range f.visitors {
		if !scope.All && v.CapturingAgentID != scope.AgentID {
			continue
		}
		stats.TotalVisitors++
		if v.CincSynced {
			stats.CincSynced++
		}
	}
	return stats, nil
}

type fakeAgentRepo struct {
	agents map[string]*agent.Agent
}

func (f *fakeAgentRepo) Create(_ context.Context, _ *agent.Agent) error {
	return nil
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*agent.Agent, error) {
	if a, ok := f.agents[id]; ok {
		return a, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeAgentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.agents[id]
	return ok, nil
}

func (f *fakeAgentRepo) List(_ context.Context) ([]agent.Agent, error) {
	return nil, nil
}

func (f *fakeAgentRepo) ListSites(_ context.Context) ([]string, error) {
	return nil, nil
}

type fakeDispatcher struct {
	outcome syncer.Outcome
	leads   []syncer.Lead
}

func (f *fakeDispatcher) Dispatch(_ context.Context, lead syncer.Lead) syncer.Outcome {
	f.leads = append(f.leads, lead)
	return f.outcome
}

func newTestService(outcome syncer.Outcome) (*Service, *fakeRepo, *fakeDispatcher) {
	repo := newFakeRepo()
	email := "pat@example.com"
	agents := &fakeAgentRepo{agents: map[string]*agent.Agent{
		testAgentID: {
			ID:     testAgentID,
			Name:   "Pat Lee",
			CincID: "cinc-77",
			Site:   "Maple Grove",
			Email:  &email,
			Active: true,
		},
	}}
	dispatcher := &fakeDispatcher{outcome: outcome}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, agents, dispatcher, logger), repo, dispatcher
}

func createReq() CreateVisitorRequest {
	return CreateVisitorRequest{
		BuyerName:        "Mary Jane Watson",
		BuyerPhone:       "555-0142",
		CapturingAgentID: testAgentID,
		Site:             "Maple Grove",
	}
}

func userIdentity(agentID string) *middleware.Identity {
	return &middleware.Identity{
		UserID:   "u-1",
		Username: "greeter",
		Role:     policy.RoleUser,
		AgentID:  agentID,
	}
}

func adminIdentity() *middleware.Identity {
	return &middleware.Identity{
		UserID:   "admin-1",
		Username: "boss",
		Role:     policy.RoleAdmin,
	}
}

func TestCreate_SyncSuccessRecorded(t *testing.T) {
	t.Parallel()

	svc, repo, dispatcher := newTestService(syncer.Outcome{OK: true, ProviderStatus: 200})

	resp, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.True(t, resp.Synced)
	assert.Empty(t, resp.SyncError)
	assert.True(t, resp.Visitor.CincSynced)
	require.NotNil(t, resp.Visitor.CincSyncAt)

	require.Len(t, repo.synced, 1)
	assert.Equal(t, resp.Visitor.ID, repo.synced[0])

	require.Len(t, dispatcher.leads, 1)
	assert.Equal(t, "Pat Lee", dispatcher.leads[0].AgentName)
	assert.Equal(t, "cinc-77", dispatcher.leads[0].AgentCincID)
}

func TestCreate_SyncFailureDoesNotFailCreation(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(syncer.Outcome{
		OK:  false,
		Err: "connection refused",
	})

	resp, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.False(t, resp.Synced)
	assert.Equal(t, "connection refused", resp.SyncError)
	assert.False(t, resp.Visitor.CincSynced)
	assert.Nil(t, resp.Visitor.CincSyncAt)

	// The lead is durable despite the failed delivery.
	require.Contains(t, repo.visitors, resp.Visitor.ID)
	assert.False(t, repo.visitors[resp.Visitor.ID].CincSynced)
	assert.Empty(t, repo.synced)
}

func TestCreate_UnknownAgent(t *testing.T) {
	t.Parallel()

	svc, repo, dispatcher := newTestService(syncer.Outcome{OK: true})

	req := createReq()
	req.CapturingAgentID = otherAgentID

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, repo.visitors)
	assert.Empty(t, dispatcher.leads)
}

func TestCreate_InitialNoteForwardedAndStored(t *testing.T) {
	t.Parallel()

	svc, repo, dispatcher := newTestService(syncer.Outcome{OK: true})

	notes := "Very interested in lot 12"
	req := createReq()
	req.Notes = &notes

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, repo.notes[resp.Visitor.ID], 1)
	assert.Equal(t, notes, repo.notes[resp.Visitor.ID][0].Note.Note)

	require.Len(t, dispatcher.leads, 1)
	assert.Equal(t, notes, dispatcher.leads[0].Notes)
}

func TestGet_OutOfScopeForbidden(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(syncer.Outcome{OK: true})

	resp, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), userIdentity(otherAgentID), resp.Visitor.ID)
	require.ErrorIs(t, err, core.ErrForbidden)

	// The capturing agent's own user and any admin can read it.
	_, err = svc.Get(context.Background(), userIdentity(testAgentID), resp.Visitor.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), adminIdentity(), resp.Visitor.ID)
	require.NoError(t, err)
}

func TestAddNote_OutOfScopeForbidden(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(syncer.Outcome{OK: true})

	resp, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	_, err = svc.AddNote(
		context.Background(),
		userIdentity(otherAgentID),
		resp.Visitor.ID,
		AddNoteRequest{AgentID: otherAgentID, Note: "sneaky"},
	)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestDelete_UserRoleForbiddenEvenForOwnLead(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(syncer.Outcome{OK: true})

	resp, err := svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), userIdentity(testAgentID), resp.Visitor.ID)
	require.ErrorIs(t, err, core.ErrForbidden)
	assert.Contains(t, repo.visitors, resp.Visitor.ID)

	err = svc.Delete(context.Background(), adminIdentity(), resp.Visitor.ID)
	require.NoError(t, err)
	assert.NotContains(t, repo.visitors, resp.Visitor.ID)
}
