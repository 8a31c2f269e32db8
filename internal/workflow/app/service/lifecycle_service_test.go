package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow-ai/decisionflow/internal/platform/logger"
	"github.com/decisionflow-ai/decisionflow/internal/shared/events"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/repository"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/governance"
)

// memStore backs the in-memory repository fakes. Everything shares one
// store so the unit of work sees the same state as the plain repositories.
type memStore struct {
	defs     map[string]*model.Definition
	versions map[string]*model.Version
	audits   []*model.PublishAudit

	locked   []string
	uowCalls int
}

func newMemStore() *memStore {
	return &memStore{
		defs:     make(map[string]*model.Definition),
		versions: make(map[string]*model.Version),
	}
}

type memDefinitionRepo struct{ s *memStore }

func (r memDefinitionRepo) Insert(_ context.Context, def *model.Definition) error {
	for _, existing := range r.s.defs {
		if existing.WorkflowID() == def.WorkflowID() {
			return repository.ErrDuplicateWorkflowID
		}
	}
	r.s.defs[def.ID()] = def
	return nil
}

func (r memDefinitionRepo) FindByID(_ context.Context, id string) (*model.Definition, error) {
	def, ok := r.s.defs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return def, nil
}

func (r memDefinitionRepo) FindByWorkflowID(_ context.Context, workflowID string) (*model.Definition, error) {
	for _, def := range r.s.defs {
		if def.WorkflowID() == workflowID {
			return def, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memDefinitionRepo) ExistsByWorkflowID(_ context.Context, workflowID string) (bool, error) {
	for _, def := range r.s.defs {
		if def.WorkflowID() == workflowID {
			return true, nil
		}
	}
	return false, nil
}

func (r memDefinitionRepo) Update(_ context.Context, def *model.Definition) error {
	if _, ok := r.s.defs[def.ID()]; !ok {
		return repository.ErrNotFound
	}
	r.s.defs[def.ID()] = def
	return nil
}

type memVersionRepo struct{ s *memStore }

func (r memVersionRepo) Insert(_ context.Context, v *model.Version) error {
	r.s.versions[v.ID()] = v
	return nil
}

func (r memVersionRepo) FindByID(_ context.Context, id string) (*model.Version, error) {
	v, ok := r.s.versions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (r memVersionRepo) FindByCode(_ context.Context, definitionID string, code model.VersionCode) (*model.Version, error) {
	for _, v := range r.s.versions {
		if v.DefinitionID() == definitionID && v.Code() == code {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memVersionRepo) ListByDefinition(_ context.Context, definitionID string) ([]*model.Version, error) {
	var out []*model.Version
	for _, v := range r.s.versions {
		if v.DefinitionID() == definitionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVersionRepo) FindPublished(_ context.Context, definitionID string) (*model.Version, error) {
	for _, v := range r.s.versions {
		if v.DefinitionID() == definitionID && v.Status() == model.VersionStatusPublished {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memVersionRepo) Update(_ context.Context, v *model.Version) error {
	if _, ok := r.s.versions[v.ID()]; !ok {
		return repository.ErrNotFound
	}
	r.s.versions[v.ID()] = v
	return nil
}

type memAuditRepo struct{ s *memStore }

func (r memAuditRepo) Insert(_ context.Context, audit *model.PublishAudit) error {
	r.s.audits = append(r.s.audits, audit)
	return nil
}

func (r memAuditRepo) ListByDefinition(_ context.Context, definitionID string) ([]*model.PublishAudit, error) {
	var out []*model.PublishAudit
	for _, a := range r.s.audits {
		if a.DefinitionID == definitionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memTx struct{ s *memStore }

func (t memTx) Definitions() repository.DefinitionRepository { return memDefinitionRepo{t.s} }
func (t memTx) Versions() repository.VersionRepository       { return memVersionRepo{t.s} }
func (t memTx) Audits() repository.PublishAuditRepository    { return memAuditRepo{t.s} }

func (t memTx) LockDefinition(_ context.Context, definitionID string) error {
	t.s.locked = append(t.s.locked, definitionID)
	return nil
}

type memUnitOfWork struct{ s *memStore }

func (u memUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx repository.TxContext) error) error {
	u.s.uowCalls++
	return fn(ctx, memTx{u.s})
}

type capturingPublisher struct {
	events []*events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event *events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) lastEventType() string {
	if len(p.events) == 0 {
		return ""
	}
	return p.events[len(p.events)-1].EventType
}

type mapCache struct {
	data    map[string][]byte
	deletes int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	c.deletes++
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})                  {}
func (nopLogger) Info(string, ...interface{})                   {}
func (nopLogger) Warn(string, ...interface{})                   {}
func (nopLogger) Error(string, ...interface{})                  {}
func (nopLogger) Fatal(string, ...interface{})                  {}
func (l nopLogger) WithFields(map[string]interface{}) logger.Logger { return l }
func (l nopLogger) WithContext(context.Context) logger.Logger       { return l }

type fixture struct {
	svc       *LifecycleService
	store     *memStore
	publisher *capturingPublisher
	cache     *mapCache
}

// The test DSLs carry no external bindings, so the governance validator
// never reaches its registries and nil ones are fine.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	publisher := &capturingPublisher{}
	cache := newMapCache()
	gov := governance.NewValidator(nil, nil, nil, nil, nil, nil, nil)

	svc := NewLifecycleService(
		memDefinitionRepo{store},
		memVersionRepo{store},
		memAuditRepo{store},
		memUnitOfWork{store},
		gov,
		publisher,
		cache,
		nil,
		nopLogger{},
	)

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	return &fixture{svc: svc, store: store, publisher: publisher, cache: cache}
}

func testIdentity() model.Identity {
	return model.Identity{
		WorkflowID:     "wf-fraud-check",
		Name:           "Fraud check",
		Mode:           model.ModeDAG,
		OwnerUserID:    "user-1",
		TemplateSource: model.TemplateSourcePrivate,
	}
}

func seedDefinition(t *testing.T, f *fixture, status model.DefinitionStatus, latest model.VersionCode) *model.Definition {
	t.Helper()
	def := model.ReconstructDefinition(
		"def-1", "wf-fraud-check", "Fraud check",
		model.ModeDAG, "", "user-1",
		model.TemplateSourcePrivate,
		status, status == model.DefinitionStatusActive, latest,
		time.Now(), time.Now(),
	)
	f.store.defs[def.ID()] = def
	return def
}

func seedVersion(f *fixture, id string, code model.VersionCode, status model.VersionStatus) *model.Version {
	dsl := model.DefaultSkeleton(testIdentity())
	dsl.Version = code.String()
	dsl.Status = string(status)
	v := model.ReconstructVersion(id, "def-1", code, status, dsl, nil, time.Now(), time.Now())
	f.store.versions[id] = v
	return v
}

func TestCreateWorkflowWithSkeleton(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateWorkflow(context.Background(), CreateWorkflowCommand{
		UserID:         "user-1",
		WorkflowID:     "wf-fraud-check",
		Name:           "Fraud check",
		Mode:           model.ModeDAG,
		TemplateSource: model.TemplateSourcePrivate,
	})
	require.NoError(t, err)

	assert.Equal(t, model.DefinitionStatusDraft, result.Definition.Status())
	assert.Equal(t, "1.0.0", result.Version.Code().String())
	assert.Equal(t, model.VersionStatusDraft, result.Version.Status())

	snapshot := result.Version.Snapshot()
	assert.Len(t, snapshot.Nodes, 3)
	assert.Equal(t, "wf-fraud-check", snapshot.WorkflowID)
	assert.Equal(t, "1.0.0", snapshot.Version)

	// Both rows landed through one unit of work.
	assert.Equal(t, 1, f.store.uowCalls)
	assert.Len(t, f.store.defs, 1)
	assert.Len(t, f.store.versions, 1)
	assert.Equal(t, events.EventWorkflowCreated, f.publisher.lastEventType())
}

func TestCreateWorkflowDuplicateWorkflowID(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())

	_, err := f.svc.CreateWorkflow(context.Background(), CreateWorkflowCommand{
		UserID:     "user-2",
		WorkflowID: "wf-fraud-check",
		Name:       "Another",
		Mode:       model.ModeLinear,
	})
	assert.ErrorIs(t, err, ErrWorkflowIDTaken)
}

func TestCreateWorkflowRejectsInvalidDSL(t *testing.T) {
	f := newFixture(t)

	bad := model.DefaultSkeleton(testIdentity())
	bad.Nodes = append(bad.Nodes, model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Dup", Enabled: true})

	_, err := f.svc.CreateWorkflow(context.Background(), CreateWorkflowCommand{
		UserID:     "user-1",
		WorkflowID: "wf-fraud-check",
		Name:       "Fraud check",
		Mode:       model.ModeDAG,
		DSL:        &bad,
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, model.StageSave, vErr.Stage)
	assert.NotEmpty(t, vErr.Issues)

	// Nothing persisted, nothing announced.
	assert.Empty(t, f.store.defs)
	assert.Empty(t, f.store.versions)
	assert.Empty(t, f.publisher.events)
}

func TestCreateVersionAdvancesPatch(t *testing.T) {
	f := newFixture(t)
	def := seedDefinition(t, f, model.DefinitionStatusActive, model.VersionCode{Major: 2, Minor: 3, Patch: 1})

	v, err := f.svc.CreateVersion(context.Background(), CreateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		DSL:          model.DefaultSkeleton(testIdentity()),
	})
	require.NoError(t, err)

	assert.Equal(t, "2.3.2", v.Code().String())
	assert.Equal(t, model.VersionStatusDraft, v.Status())
	assert.Equal(t, "2.3.2", def.LatestVersionCode().String())
	assert.Contains(t, f.store.locked, "def-1")
	assert.Equal(t, events.EventWorkflowVersionCreated, f.publisher.lastEventType())
}

func TestCreateVersionAuthorization(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())

	_, err := f.svc.CreateVersion(context.Background(), CreateVersionCommand{
		UserID:       "user-2",
		DefinitionID: "def-1",
		DSL:          model.DefaultSkeleton(testIdentity()),
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.CreateVersion(context.Background(), CreateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "ghost",
		DSL:          model.DefaultSkeleton(testIdentity()),
	})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestCreateVersionArchivedDefinition(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusArchived, model.InitialVersionCode())

	_, err := f.svc.CreateVersion(context.Background(), CreateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		DSL:          model.DefaultSkeleton(testIdentity()),
	})
	assert.ErrorIs(t, err, model.ErrDefinitionArchived)
}

func TestUpdateVersionReplacesDraftSnapshot(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	seedVersion(f, "ver-1", model.InitialVersionCode(), model.VersionStatusDraft)

	dsl := model.DefaultSkeleton(testIdentity())
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "report", Type: model.NodeOutput, Name: "Report", Enabled: true})
	dsl.Edges = append(dsl.Edges, model.Edge{ID: "e3", From: "gate", To: "report", EdgeType: model.EdgeControl})
	dsl.Version = "9.9.9" // ignored: the stored code wins

	v, err := f.svc.UpdateVersion(context.Background(), UpdateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionID:    "ver-1",
		DSL:          dsl,
	})
	require.NoError(t, err)

	assert.Equal(t, model.VersionStatusDraft, v.Status())
	snapshot := v.Snapshot()
	assert.Len(t, snapshot.Nodes, 4)
	assert.Equal(t, "1.0.0", snapshot.Version)
	assert.Equal(t, string(model.VersionStatusDraft), snapshot.Status)
}

func TestUpdateVersionRejectsPublished(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	seedVersion(f, "ver-pub", model.InitialVersionCode(), model.VersionStatusPublished)

	_, err := f.svc.UpdateVersion(context.Background(), UpdateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionID:    "ver-pub",
		DSL:          model.DefaultSkeleton(testIdentity()),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateVersionValidationFailureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	target := seedVersion(f, "ver-1", model.InitialVersionCode(), model.VersionStatusDraft)
	before := target.Snapshot()

	bad := model.DefaultSkeleton(testIdentity())
	bad.Nodes = append(bad.Nodes, model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Dup", Enabled: true})

	_, err := f.svc.UpdateVersion(context.Background(), UpdateVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionID:    "ver-1",
		DSL:          bad,
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, model.StageSave, vErr.Stage)
	assert.Len(t, target.Snapshot().Nodes, len(before.Nodes))
}

func TestPublishVersion(t *testing.T) {
	f := newFixture(t)
	def := seedDefinition(t, f, model.DefinitionStatusActive, model.VersionCode{Major: 1, Minor: 0, Patch: 0})
	prior := seedVersion(f, "ver-old", model.VersionCode{Minor: 9}, model.VersionStatusPublished)
	target := seedVersion(f, "ver-new", model.InitialVersionCode(), model.VersionStatusDraft)

	result, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionCode:  "1.0.0",
	})
	require.NoError(t, err)

	// Target published, prior published version archived.
	assert.Equal(t, model.VersionStatusPublished, target.Status())
	require.NotNil(t, target.PublishedAt())
	assert.Equal(t, model.VersionStatusArchived, prior.Status())
	assert.Equal(t, []string{"0.9.0"}, result.ArchivedVersions)

	// Draft successor auto-created and wired into the definition.
	require.NotNil(t, result.NextDraft)
	assert.Equal(t, "1.0.1", result.NextDraft.Code().String())
	assert.Equal(t, model.VersionStatusDraft, result.NextDraft.Status())
	assert.Equal(t, "1.0.1", result.NextDraft.Snapshot().Version)
	assert.Equal(t, "1.0.1", def.LatestVersionCode().String())
	assert.Equal(t, model.DefinitionStatusActive, def.Status())

	// One audit record capturing the whole transition.
	require.Len(t, f.store.audits, 1)
	audit := f.store.audits[0]
	assert.Equal(t, "ver-new", audit.WorkflowVersionID)
	assert.Equal(t, "1.0.0", audit.Snapshot.PublishedVersionCode)
	assert.Equal(t, []string{"0.9.0"}, audit.Snapshot.ArchivedVersionCodes)
	assert.Equal(t, "1.0.1", audit.Snapshot.NewDraftVersionCode)
	assert.Equal(t, "user-1", audit.PublishedByUserID)

	assert.Contains(t, f.store.locked, "def-1")
	assert.Equal(t, 1, f.cache.deletes)
	assert.Equal(t, events.EventWorkflowVersionPublished, f.publisher.lastEventType())
}

func TestPublishVersionByID(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())
	seedVersion(f, "ver-new", model.InitialVersionCode(), model.VersionStatusDraft)

	result, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionID:    "ver-new",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", result.Published.Code().String())
	assert.Empty(t, result.ArchivedVersions)
}

func TestPublishVersionTargetFromOtherWorkflow(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())
	foreign := model.NewVersion("ver-x", "def-other", model.InitialVersionCode(), model.DefaultSkeleton(testIdentity()))
	f.store.versions[foreign.ID()] = foreign

	_, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionID:    "ver-x",
	})
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestPublishVersionRejectsNonDraft(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	seedVersion(f, "ver-pub", model.InitialVersionCode(), model.VersionStatusPublished)

	_, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionCode:  "1.0.0",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// interceptingUnitOfWork runs a hook before opening the transaction, the
// window in which a concurrent publisher can commit first.
type interceptingUnitOfWork struct {
	s      *memStore
	before func()
}

func (u interceptingUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx repository.TxContext) error) error {
	if u.before != nil {
		u.before()
	}
	u.s.uowCalls++
	return fn(ctx, memTx{u.s})
}

func TestPublishVersionConcurrentPublishCommitsOnce(t *testing.T) {
	f := newFixture(t)
	def := seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	target := seedVersion(f, "ver-new", model.InitialVersionCode(), model.VersionStatusDraft)

	// A competing publisher wins the lock between this call's pre-lock
	// validation and its own transaction: the target is already published
	// by the time the lock is acquired.
	f.svc.uow = interceptingUnitOfWork{s: f.store, before: func() {
		require.NoError(t, target.Publish(time.Now()))
	}}

	_, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionCode:  "1.0.0",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// The loser must not have stacked a second publish on top: no extra
	// draft, no audit row, definition untouched.
	assert.Len(t, f.store.versions, 1)
	assert.Empty(t, f.store.audits)
	assert.Equal(t, "1.0.0", def.LatestVersionCode().String())
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, 0, f.cache.deletes)
}

func TestPublishVersionMalformedCode(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())

	_, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionCode:  "not-a-version",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPublishVersionValidationFailureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())

	// A draft whose graph has no risk gate fails the publish stage.
	dsl := model.DefaultSkeleton(testIdentity())
	dsl.Nodes[1] = model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Rules", Enabled: true}
	target := model.ReconstructVersion("ver-new", "def-1", model.InitialVersionCode(), model.VersionStatusDraft, dsl, nil, time.Now(), time.Now())
	f.store.versions[target.ID()] = target

	_, err := f.svc.PublishVersion(context.Background(), PublishVersionCommand{
		UserID:       "user-1",
		DefinitionID: "def-1",
		VersionCode:  "1.0.0",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, model.StagePublish, vErr.Stage)

	assert.Equal(t, model.VersionStatusDraft, target.Status())
	assert.Equal(t, 0, f.store.uowCalls)
	assert.Empty(t, f.store.audits)
	assert.Len(t, f.store.versions, 1)
	assert.Empty(t, f.publisher.events)
}

func TestArchiveWorkflow(t *testing.T) {
	f := newFixture(t)
	def := seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())

	err := f.svc.ArchiveWorkflow(context.Background(), "user-2", "def-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.svc.ArchiveWorkflow(context.Background(), "user-1", "def-1"))
	assert.Equal(t, model.DefinitionStatusArchived, def.Status())
	assert.Equal(t, events.EventWorkflowArchived, f.publisher.lastEventType())

	err = f.svc.ArchiveWorkflow(context.Background(), "user-1", "def-1")
	assert.ErrorIs(t, err, model.ErrDefinitionArchived)
}

func TestListVersionsVisibility(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	seedVersion(f, "ver-1", model.InitialVersionCode(), model.VersionStatusDraft)

	versions, err := f.svc.ListVersions(context.Background(), "user-1", "def-1")
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	_, err = f.svc.ListVersions(context.Background(), "user-2", "def-1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetPublishedSnapshot(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusActive, model.InitialVersionCode())
	seedVersion(f, "ver-pub", model.InitialVersionCode(), model.VersionStatusPublished)

	dsl, err := f.svc.GetPublishedSnapshot(context.Background(), "user-1", "def-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-fraud-check", dsl.WorkflowID)

	// Second read is served from the cache even after the row disappears.
	delete(f.store.versions, "ver-pub")
	dsl, err = f.svc.GetPublishedSnapshot(context.Background(), "user-1", "def-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-fraud-check", dsl.WorkflowID)
}

func TestGetPublishedSnapshotNonePublished(t *testing.T) {
	f := newFixture(t)
	seedDefinition(t, f, model.DefinitionStatusDraft, model.InitialVersionCode())
	seedVersion(f, "ver-1", model.InitialVersionCode(), model.VersionStatusDraft)

	_, err := f.svc.GetPublishedSnapshot(context.Background(), "user-1", "def-1")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestValidateStandalone(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Validate(context.Background(), "user-1", model.DefaultSkeleton(testIdentity()), model.StageSave)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	dsl := model.DefaultSkeleton(testIdentity())
	dsl.Nodes[1] = model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Rules", Enabled: true}
	result, err = f.svc.Validate(context.Background(), "user-1", dsl, model.StagePublish)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
