package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisionflow-ai/decisionflow/internal/platform/logger"
	"github.com/decisionflow-ai/decisionflow/internal/platform/metrics"
	"github.com/decisionflow-ai/decisionflow/internal/shared/events"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/repository"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/extract"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/governance"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/structural"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrVersionNotFound  = errors.New("workflow version not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrWorkflowIDTaken  = errors.New("workflowId is already taken")
	ErrInvalidInput     = errors.New("invalid input")
)

// ValidationError carries the structural and governance issues that made a
// save or publish attempt fail. The caller distinguishes it from
// infrastructure errors with errors.As and renders the issues verbatim.
type ValidationError struct {
	Stage  model.ValidationStage
	Issues []model.ValidationIssue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow failed %s validation with %d issue(s)", e.Stage, len(e.Issues))
}

// EventPublisher publishes lifecycle events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

// SnapshotCache holds the published-snapshot read-through cache.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const snapshotTTL = 15 * time.Minute

// LifecycleService drives the definition/version state machines: create,
// create-version, publish, archive, list, validate. All writes that touch
// more than one row go through the unit of work.
type LifecycleService struct {
	definitions repository.DefinitionRepository
	versions    repository.VersionRepository
	audits      repository.PublishAuditRepository
	uow         repository.UnitOfWork
	governance  *governance.Validator
	publisher   EventPublisher
	cache       SnapshotCache
	metrics     *metrics.Metrics
	logger      logger.Logger

	now   func() time.Time
	newID func() string
}

// NewLifecycleService creates the lifecycle service. publisher, cache and
// m may be nil; the corresponding side effects are skipped.
func NewLifecycleService(
	definitions repository.DefinitionRepository,
	versions repository.VersionRepository,
	audits repository.PublishAuditRepository,
	uow repository.UnitOfWork,
	gov *governance.Validator,
	publisher EventPublisher,
	cache SnapshotCache,
	m *metrics.Metrics,
	log logger.Logger,
) *LifecycleService {
	return &LifecycleService{
		definitions: definitions,
		versions:    versions,
		audits:      audits,
		uow:         uow,
		governance:  gov,
		publisher:   publisher,
		cache:       cache,
		metrics:     m,
		logger:      log,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// CreateWorkflowCommand creates a definition with its initial 1.0.0 draft.
// DSL is optional; when nil a default skeleton for the mode is generated.
type CreateWorkflowCommand struct {
	UserID         string
	WorkflowID     string
	Name           string
	Mode           model.WorkflowMode
	UsageMethod    string
	TemplateSource model.TemplateSource
	DSL            *model.WorkflowDSL
}

// CreateWorkflowResult is returned by CreateWorkflow.
type CreateWorkflowResult struct {
	Definition *model.Definition
	Version    *model.Version
}

// CreateWorkflow creates a new workflow definition together with its first
// draft version.
func (s *LifecycleService) CreateWorkflow(ctx context.Context, cmd CreateWorkflowCommand) (*CreateWorkflowResult, error) {
	s.logger.Debug("Creating workflow", "user_id", cmd.UserID, "workflow_id", cmd.WorkflowID)

	exists, err := s.definitions.ExistsByWorkflowID(ctx, cmd.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to check workflowId existence: %w", err)
	}
	if exists {
		return nil, ErrWorkflowIDTaken
	}

	identity := model.Identity{
		WorkflowID:     cmd.WorkflowID,
		Name:           cmd.Name,
		Mode:           cmd.Mode,
		UsageMethod:    cmd.UsageMethod,
		OwnerUserID:    cmd.UserID,
		TemplateSource: cmd.TemplateSource,
	}

	def, err := model.NewDefinition(s.newID(), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	var dsl model.WorkflowDSL
	if cmd.DSL != nil {
		dsl = model.Canonicalize(*cmd.DSL, identity)
	} else {
		dsl = model.DefaultSkeleton(identity)
	}
	dsl.Version = model.InitialVersionCode().String()
	dsl.Status = string(model.VersionStatusDraft)

	if err := s.runSaveValidation(ctx, cmd.UserID, dsl); err != nil {
		return nil, err
	}

	version := model.NewVersion(s.newID(), def.ID(), model.InitialVersionCode(), dsl)

	err = s.uow.Execute(ctx, func(ctx context.Context, tx repository.TxContext) error {
		if err := tx.Definitions().Insert(ctx, def); err != nil {
			return err
		}
		return tx.Versions().Insert(ctx, version)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateWorkflowID) {
			return nil, ErrWorkflowIDTaken
		}
		return nil, fmt.Errorf("failed to persist workflow: %w", err)
	}

	s.countLifecycle("created")
	s.emit(ctx, def.ID(), events.WorkflowCreated{
		DefinitionID: def.ID(),
		WorkflowID:   def.WorkflowID(),
		Name:         def.Name(),
		Mode:         string(def.Mode()),
		OwnerUserID:  def.OwnerUserID(),
		VersionCode:  version.Code().String(),
		CreatedAt:    version.CreatedAt(),
	}, events.EventWorkflowCreated, cmd.UserID)

	s.logger.Info("Workflow created", "definition_id", def.ID(), "workflow_id", def.WorkflowID(), "version", version.Code().String())
	return &CreateWorkflowResult{Definition: def, Version: version}, nil
}

// CreateVersionCommand creates the next draft version of a definition.
type CreateVersionCommand struct {
	UserID       string
	DefinitionID string
	DSL          model.WorkflowDSL
}

// CreateVersion creates a new draft version. The version code is the
// patch successor of the definition's latest code; a latest code that
// does not parse falls back to 1.0.0.
func (s *LifecycleService) CreateVersion(ctx context.Context, cmd CreateVersionCommand) (*model.Version, error) {
	def, err := s.loadDefinition(ctx, cmd.DefinitionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(def, cmd.UserID); err != nil {
		return nil, err
	}

	dsl := model.Canonicalize(cmd.DSL, def.Identity())

	next := model.InitialVersionCode()
	if !def.LatestVersionCode().IsZero() {
		next = def.LatestVersionCode().NextPatch()
	}
	dsl.Version = next.String()
	dsl.Status = string(model.VersionStatusDraft)

	if err := s.runSaveValidation(ctx, cmd.UserID, dsl); err != nil {
		return nil, err
	}

	version := model.NewVersion(s.newID(), def.ID(), next, dsl)
	if err := def.AdvanceLatest(next); err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx repository.TxContext) error {
		if err := tx.LockDefinition(ctx, def.ID()); err != nil {
			return err
		}
		if err := tx.Versions().Insert(ctx, version); err != nil {
			return err
		}
		return tx.Definitions().Update(ctx, def)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist version: %w", err)
	}

	s.countLifecycle("version_created")
	s.emit(ctx, def.ID(), events.WorkflowVersionCreated{
		DefinitionID: def.ID(),
		WorkflowID:   def.WorkflowID(),
		VersionID:    version.ID(),
		VersionCode:  version.Code().String(),
		CreatedAt:    version.CreatedAt(),
	}, events.EventWorkflowVersionCreated, cmd.UserID)

	s.logger.Info("Workflow version created", "definition_id", def.ID(), "version", next.String())
	return version, nil
}

// UpdateVersionCommand replaces the DSL snapshot of an existing draft.
type UpdateVersionCommand struct {
	UserID       string
	DefinitionID string
	VersionID    string
	DSL          model.WorkflowDSL
}

// UpdateVersion overwrites the snapshot of a draft version in place.
// Published and archived versions are immutable; edits to those go
// through a new draft instead.
func (s *LifecycleService) UpdateVersion(ctx context.Context, cmd UpdateVersionCommand) (*model.Version, error) {
	def, err := s.loadDefinition(ctx, cmd.DefinitionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(def, cmd.UserID); err != nil {
		return nil, err
	}

	version, err := s.locateVersion(ctx, def.ID(), cmd.VersionID, "")
	if err != nil {
		return nil, err
	}

	dsl := model.Canonicalize(cmd.DSL, def.Identity())
	dsl.Version = version.Code().String()
	dsl.Status = string(model.VersionStatusDraft)

	if err := s.runSaveValidation(ctx, cmd.UserID, dsl); err != nil {
		return nil, err
	}

	if err := version.UpdateSnapshot(dsl); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.versions.Update(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to update version: %w", err)
	}

	s.countLifecycle("version_updated")
	s.logger.Info("Workflow draft updated", "definition_id", def.ID(), "version", version.Code().String())
	return version, nil
}

// PublishVersionCommand publishes one draft version. The target is
// addressed either by VersionID or by VersionCode; VersionID wins when
// both are set.
type PublishVersionCommand struct {
	UserID       string
	DefinitionID string
	VersionID    string
	VersionCode  string
}

// PublishResult reports the outcome of a publish: the now-published
// version, the automatically created draft successor, and the codes of
// versions archived along the way.
type PublishResult struct {
	Definition       *model.Definition
	Published        *model.Version
	NextDraft        *model.Version
	ArchivedVersions []string
	Audit            *model.PublishAudit
}

// PublishVersion re-validates the target at PUBLISH stage and then, in a
// single transaction: archives the previously published version, marks
// the target PUBLISHED, creates the draft successor seeded from the
// published snapshot, and appends the audit record. Validation failure
// mutates nothing.
func (s *LifecycleService) PublishVersion(ctx context.Context, cmd PublishVersionCommand) (*PublishResult, error) {
	started := s.now()

	def, err := s.loadDefinition(ctx, cmd.DefinitionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(def, cmd.UserID); err != nil {
		return nil, err
	}

	target, err := s.locateVersion(ctx, def.ID(), cmd.VersionID, cmd.VersionCode)
	if err != nil {
		return nil, err
	}
	if target.Status() != model.VersionStatusDraft {
		return nil, fmt.Errorf("%w: version %s is %s, only drafts can be published", ErrInvalidInput, target.Code(), target.Status())
	}

	dsl := model.Canonicalize(target.Snapshot(), def.Identity())
	if err := s.runPublishValidation(ctx, cmd.UserID, def.ID(), dsl); err != nil {
		s.observePublish(started, "rejected")
		return nil, err
	}

	publishedAt := s.now()
	nextCode := target.Code().NextPatch()

	result := &PublishResult{Definition: def}
	err = s.uow.Execute(ctx, func(ctx context.Context, tx repository.TxContext) error {
		if err := tx.LockDefinition(ctx, def.ID()); err != nil {
			return err
		}

		// Validation ran before the lock was taken. Re-read the target
		// under the lock so a publish that lost the race to a concurrent
		// caller fails here instead of committing a second time.
		current, err := tx.Versions().FindByID(ctx, target.ID())
		if err != nil {
			return err
		}
		if current.Status() != model.VersionStatusDraft {
			return fmt.Errorf("%w: version %s is %s, only drafts can be published", ErrInvalidInput, current.Code(), current.Status())
		}
		target = current

		siblings, err := tx.Versions().ListByDefinition(ctx, def.ID())
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID() == target.ID() || sib.Status() != model.VersionStatusPublished {
				continue
			}
			sib.Archive()
			if err := tx.Versions().Update(ctx, sib); err != nil {
				return err
			}
			result.ArchivedVersions = append(result.ArchivedVersions, sib.Code().String())
		}

		if err := target.Publish(publishedAt); err != nil {
			return err
		}
		if err := tx.Versions().Update(ctx, target); err != nil {
			return err
		}

		draftDSL := dsl
		draftDSL.Version = nextCode.String()
		draftDSL.Status = string(model.VersionStatusDraft)
		nextDraft := model.NewVersion(s.newID(), def.ID(), nextCode, draftDSL)
		if err := tx.Versions().Insert(ctx, nextDraft); err != nil {
			return err
		}

		audit := &model.PublishAudit{
			ID:                s.newID(),
			DefinitionID:      def.ID(),
			WorkflowVersionID: target.ID(),
			Operation:         model.AuditOperationPublish,
			PublishedByUserID: cmd.UserID,
			Snapshot: model.PublishSnapshot{
				PublishedVersionCode: target.Code().String(),
				ArchivedVersionCodes: result.ArchivedVersions,
				NewDraftVersionCode:  nextCode.String(),
				DSL:                  dsl,
			},
			PublishedAt: publishedAt,
		}
		if err := tx.Audits().Insert(ctx, audit); err != nil {
			return err
		}

		if err := def.MarkPublished(nextCode); err != nil {
			return err
		}
		if err := tx.Definitions().Update(ctx, def); err != nil {
			return err
		}

		result.Published = target
		result.NextDraft = nextDraft
		result.Audit = audit
		return nil
	})
	if err != nil {
		s.observePublish(started, "error")
		return nil, fmt.Errorf("failed to publish version: %w", err)
	}

	s.invalidateSnapshot(ctx, def.ID())
	s.observePublish(started, "published")
	s.countLifecycle("published")
	s.emit(ctx, def.ID(), events.WorkflowVersionPublished{
		DefinitionID:     def.ID(),
		WorkflowID:       def.WorkflowID(),
		VersionID:        target.ID(),
		VersionCode:      target.Code().String(),
		NextDraftCode:    nextCode.String(),
		ArchivedVersions: result.ArchivedVersions,
		PublishedBy:      cmd.UserID,
		PublishedAt:      publishedAt,
	}, events.EventWorkflowVersionPublished, cmd.UserID)

	s.logger.Info("Workflow version published",
		"definition_id", def.ID(),
		"version", target.Code().String(),
		"next_draft", nextCode.String(),
		"archived", result.ArchivedVersions,
	)
	return result, nil
}

// ArchiveWorkflow retires a definition. Versions are left in place for
// audit purposes and the definition stops accepting edits and publishes.
func (s *LifecycleService) ArchiveWorkflow(ctx context.Context, userID, definitionID string) error {
	def, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return err
	}
	if def.OwnerUserID() != userID {
		return ErrUnauthorized
	}
	if err := def.Archive(); err != nil {
		return err
	}
	if err := s.definitions.Update(ctx, def); err != nil {
		return fmt.Errorf("failed to archive workflow: %w", err)
	}

	s.invalidateSnapshot(ctx, def.ID())
	s.countLifecycle("archived")
	s.emit(ctx, def.ID(), events.WorkflowArchived{
		DefinitionID: def.ID(),
		WorkflowID:   def.WorkflowID(),
		ArchivedBy:   userID,
		ArchivedAt:   s.now(),
	}, events.EventWorkflowArchived, userID)

	s.logger.Info("Workflow archived", "definition_id", def.ID())
	return nil
}

// ListVersions returns the versions of a definition, newest first. The
// caller must own the definition or the definition must be PUBLIC.
func (s *LifecycleService) ListVersions(ctx context.Context, userID, definitionID string) ([]*model.Version, error) {
	def, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	if !def.IsVisibleTo(userID) {
		return nil, ErrUnauthorized
	}
	versions, err := s.versions.ListByDefinition(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// ListPublishAudits returns the publish history of a definition.
func (s *LifecycleService) ListPublishAudits(ctx context.Context, userID, definitionID string) ([]*model.PublishAudit, error) {
	def, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	if !def.IsVisibleTo(userID) {
		return nil, ErrUnauthorized
	}
	audits, err := s.audits.ListByDefinition(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list publish audits: %w", err)
	}
	return audits, nil
}

// Validate runs the requested validation stage against an arbitrary DSL
// without persisting anything. The DSL is canonicalized against its own
// declared identity first.
func (s *LifecycleService) Validate(ctx context.Context, userID string, dsl model.WorkflowDSL, stage model.ValidationStage) (model.ValidationResult, error) {
	started := s.now()
	canonical := model.Canonicalize(dsl, model.Identity{
		WorkflowID:     dsl.WorkflowID,
		Name:           dsl.Name,
		Mode:           dsl.Mode,
		UsageMethod:    dsl.UsageMethod,
		OwnerUserID:    dsl.OwnerUserID,
		TemplateSource: dsl.TemplateSource,
	})

	result := structural.Validate(canonical, stage)
	refs := extract.Collect(canonical)
	result = result.Merge(model.NewValidationResult(refs.Issues))

	var govResult model.ValidationResult
	var err error
	if stage == model.StagePublish {
		govResult, err = s.governance.ValidatePublish(ctx, userID, "", canonical, refs)
	} else {
		govResult, err = s.governance.ValidateSave(ctx, userID, refs)
	}
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("governance validation: %w", err)
	}
	result = result.Merge(govResult)
	s.observeValidation(stage, result, started)
	return result, nil
}

// GetPublishedSnapshot returns the DSL of the currently published version,
// read through the snapshot cache.
func (s *LifecycleService) GetPublishedSnapshot(ctx context.Context, userID, definitionID string) (*model.WorkflowDSL, error) {
	def, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	if !def.IsVisibleTo(userID) {
		return nil, ErrUnauthorized
	}

	key := snapshotKey(definitionID)
	if s.cache != nil {
		var cached model.WorkflowDSL
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	published, err := s.versions.FindPublished(ctx, definitionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to load published version: %w", err)
	}
	dsl := published.Snapshot()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dsl, snapshotTTL); err != nil {
			s.logger.Warn("Failed to cache published snapshot", "definition_id", definitionID, "error", err)
		}
	}
	return &dsl, nil
}

func (s *LifecycleService) runSaveValidation(ctx context.Context, userID string, dsl model.WorkflowDSL) error {
	started := s.now()
	result := structural.Validate(dsl, model.StageSave)
	refs := extract.Collect(dsl)
	result = result.Merge(model.NewValidationResult(refs.Issues))

	govResult, err := s.governance.ValidateSave(ctx, userID, refs)
	if err != nil {
		return fmt.Errorf("governance validation: %w", err)
	}
	result = result.Merge(govResult)
	s.observeValidation(model.StageSave, result, started)

	if !result.Valid {
		return &ValidationError{Stage: model.StageSave, Issues: result.Issues}
	}
	return nil
}

func (s *LifecycleService) runPublishValidation(ctx context.Context, userID, definitionID string, dsl model.WorkflowDSL) error {
	started := s.now()
	result := structural.Validate(dsl, model.StagePublish)
	refs := extract.Collect(dsl)
	result = result.Merge(model.NewValidationResult(refs.Issues))

	govResult, err := s.governance.ValidatePublish(ctx, userID, definitionID, dsl, refs)
	if err != nil {
		return fmt.Errorf("governance validation: %w", err)
	}
	result = result.Merge(govResult)
	s.observeValidation(model.StagePublish, result, started)

	if !result.Valid {
		return &ValidationError{Stage: model.StagePublish, Issues: result.Issues}
	}
	return nil
}

func (s *LifecycleService) loadDefinition(ctx context.Context, definitionID string) (*model.Definition, error) {
	def, err := s.definitions.FindByID(ctx, definitionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	return def, nil
}

func (s *LifecycleService) requireEditable(def *model.Definition, userID string) error {
	if def.OwnerUserID() != userID {
		return ErrUnauthorized
	}
	if def.Status() == model.DefinitionStatusArchived {
		return model.ErrDefinitionArchived
	}
	return nil
}

func (s *LifecycleService) locateVersion(ctx context.Context, definitionID, versionID, versionCode string) (*model.Version, error) {
	var (
		v   *model.Version
		err error
	)
	switch {
	case versionID != "":
		v, err = s.versions.FindByID(ctx, versionID)
		if err == nil && v.DefinitionID() != definitionID {
			return nil, ErrVersionNotFound
		}
	case versionCode != "":
		code, ok := model.ParseVersionCode(versionCode)
		if !ok {
			return nil, fmt.Errorf("%w: malformed version code %q", ErrInvalidInput, versionCode)
		}
		v, err = s.versions.FindByCode(ctx, definitionID, code)
	default:
		return nil, fmt.Errorf("%w: versionId or versionCode is required", ErrInvalidInput)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to load version: %w", err)
	}
	return v, nil
}

func (s *LifecycleService) emit(ctx context.Context, aggregateID string, payload interface{}, eventType, userID string) {
	if s.publisher == nil {
		return
	}
	event, err := events.NewEvent(aggregateID, "workflow", eventType, payload)
	if err != nil {
		s.logger.Error("Failed to build lifecycle event", "event_type", eventType, "error", err)
		return
	}
	event.UserID = userID
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish lifecycle event", "event_type", eventType, "error", err)
	}
}

func (s *LifecycleService) invalidateSnapshot(ctx context.Context, definitionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, snapshotKey(definitionID)); err != nil {
		s.logger.Warn("Failed to invalidate snapshot cache", "definition_id", definitionID, "error", err)
	}
}

func (s *LifecycleService) countLifecycle(operation string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WorkflowLifecycleTotal.WithLabelValues(operation).Inc()
}

func (s *LifecycleService) observeValidation(stage model.ValidationStage, result model.ValidationResult, started time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "valid"
	if !result.Valid {
		outcome = "invalid"
	}
	s.metrics.ValidationRunsTotal.WithLabelValues(string(stage), outcome).Inc()
	s.metrics.ValidationDuration.WithLabelValues(string(stage)).Observe(s.now().Sub(started).Seconds())
	for _, issue := range result.Issues {
		s.metrics.ValidationIssuesTotal.WithLabelValues(issue.Code).Inc()
	}
}

func (s *LifecycleService) observePublish(started time.Time, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PublishDuration.WithLabelValues(outcome).Observe(s.now().Sub(started).Seconds())
}

func snapshotKey(definitionID string) string {
	return "workflow:snapshot:" + definitionID
}
