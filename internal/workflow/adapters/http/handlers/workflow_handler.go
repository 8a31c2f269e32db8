package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/decisionflow-ai/decisionflow/internal/platform/logger"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/adapters/http/dto"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/app/service"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/pkg/middleware"
)

// WorkflowHandler handles HTTP requests for the workflow lifecycle
type WorkflowHandler struct {
	service *service.LifecycleService
	logger  logger.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(service *service.LifecycleService, logger logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers workflow lifecycle routes
func (h *WorkflowHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/workflows", h.CreateWorkflow).Methods("POST")
	router.HandleFunc("/workflows/validate", h.ValidateWorkflow).Methods("POST")
	router.HandleFunc("/workflows/{id}", h.ArchiveWorkflow).Methods("DELETE")
	router.HandleFunc("/workflows/{id}/versions", h.CreateVersion).Methods("POST")
	router.HandleFunc("/workflows/{id}/versions", h.ListVersions).Methods("GET")
	router.HandleFunc("/workflows/{id}/versions/{versionId}", h.UpdateVersion).Methods("PUT")
	router.HandleFunc("/workflows/{id}/publish", h.PublishVersion).Methods("POST")
	router.HandleFunc("/workflows/{id}/audits", h.ListPublishAudits).Methods("GET")
	router.HandleFunc("/workflows/{id}/snapshot", h.GetPublishedSnapshot).Methods("GET")
}

// CreateWorkflow creates a definition with its initial draft version
func (h *WorkflowHandler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.respondError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}

	result, err := h.service.CreateWorkflow(ctx, service.CreateWorkflowCommand{
		UserID:         userID,
		WorkflowID:     req.WorkflowID,
		Name:           req.Name,
		Mode:           model.WorkflowMode(req.Mode),
		UsageMethod:    req.UsageMethod,
		TemplateSource: model.TemplateSource(req.TemplateSource),
		DSL:            req.DSL,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create workflow")
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.CreateWorkflowResponse{
		Workflow: definitionToDTO(result.Definition),
		Version:  versionToDTO(result.Version, true),
	})
}

// CreateVersion saves a new draft version of a definition
func (h *WorkflowHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	var req dto.CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(ctx)
	version, err := h.service.CreateVersion(ctx, service.CreateVersionCommand{
		UserID:       userID,
		DefinitionID: definitionID,
		DSL:          req.DSL,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create version")
		return
	}

	h.respondJSON(w, http.StatusCreated, versionToDTO(version, true))
}

// UpdateVersion replaces the DSL snapshot of a draft version
func (h *WorkflowHandler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	var req dto.UpdateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(ctx)
	version, err := h.service.UpdateVersion(ctx, service.UpdateVersionCommand{
		UserID:       userID,
		DefinitionID: vars["id"],
		VersionID:    vars["versionId"],
		DSL:          req.DSL,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update version")
		return
	}

	h.respondJSON(w, http.StatusOK, versionToDTO(version, true))
}

// PublishVersion publishes one draft version
func (h *WorkflowHandler) PublishVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	var req dto.PublishVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(ctx)
	result, err := h.service.PublishVersion(ctx, service.PublishVersionCommand{
		UserID:       userID,
		DefinitionID: definitionID,
		VersionID:    req.VersionID,
		VersionCode:  req.VersionCode,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to publish version")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PublishVersionResponse{
		Workflow:         definitionToDTO(result.Definition),
		Published:        versionToDTO(result.Published, false),
		NextDraft:        versionToDTO(result.NextDraft, false),
		ArchivedVersions: result.ArchivedVersions,
	})
}

// ArchiveWorkflow retires a definition
func (h *WorkflowHandler) ArchiveWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	userID := middleware.GetUserID(ctx)
	if err := h.service.ArchiveWorkflow(ctx, userID, definitionID); err != nil {
		h.respondServiceError(w, r, err, "Failed to archive workflow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions lists the versions of a definition, newest first
func (h *WorkflowHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	userID := middleware.GetUserID(ctx)
	versions, err := h.service.ListVersions(ctx, userID, definitionID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list versions")
		return
	}

	items := make([]dto.VersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, versionToDTO(v, false))
	}
	h.respondJSON(w, http.StatusOK, dto.ListVersionsResponse{Items: items, Total: len(items)})
}

// ListPublishAudits lists the publish history of a definition
func (h *WorkflowHandler) ListPublishAudits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	userID := middleware.GetUserID(ctx)
	audits, err := h.service.ListPublishAudits(ctx, userID, definitionID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list publish audits")
		return
	}

	items := make([]dto.PublishAuditResponse, 0, len(audits))
	for _, a := range audits {
		items = append(items, dto.PublishAuditResponse{
			ID:                   a.ID,
			WorkflowVersionID:    a.WorkflowVersionID,
			Operation:            a.Operation,
			PublishedByUserID:    a.PublishedByUserID,
			PublishedVersionCode: a.Snapshot.PublishedVersionCode,
			ArchivedVersionCodes: a.Snapshot.ArchivedVersionCodes,
			NewDraftVersionCode:  a.Snapshot.NewDraftVersionCode,
			PublishedAt:          a.PublishedAt,
		})
	}
	h.respondJSON(w, http.StatusOK, dto.ListAuditsResponse{Items: items, Total: len(items)})
}

// ValidateWorkflow runs a validation stage against an arbitrary DSL
func (h *WorkflowHandler) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ValidateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(ctx)
	result, err := h.service.Validate(ctx, userID, req.DSL, model.ValidationStage(req.Stage))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to validate workflow")
		return
	}
	h.respondJSON(w, http.StatusOK, validationResultToDTO(result))
}

// GetPublishedSnapshot returns the DSL of the published version
func (h *WorkflowHandler) GetPublishedSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	definitionID := mux.Vars(r)["id"]

	userID := middleware.GetUserID(ctx)
	snapshot, err := h.service.GetPublishedSnapshot(ctx, userID, definitionID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load published snapshot")
		return
	}
	h.respondJSON(w, http.StatusOK, snapshot)
}

// Helper methods

func definitionToDTO(def *model.Definition) dto.WorkflowResponse {
	return dto.WorkflowResponse{
		ID:                def.ID(),
		WorkflowID:        def.WorkflowID(),
		Name:              def.Name(),
		Mode:              string(def.Mode()),
		UsageMethod:       def.UsageMethod(),
		TemplateSource:    string(def.TemplateSource()),
		Status:            string(def.Status()),
		IsActive:          def.IsActive(),
		LatestVersionCode: def.LatestVersionCode().String(),
		CreatedAt:         def.CreatedAt(),
		UpdatedAt:         def.UpdatedAt(),
	}
}

func versionToDTO(v *model.Version, includeDSL bool) dto.VersionResponse {
	resp := dto.VersionResponse{
		ID:          v.ID(),
		VersionCode: v.Code().String(),
		Status:      string(v.Status()),
		PublishedAt: v.PublishedAt(),
		CreatedAt:   v.CreatedAt(),
	}
	if includeDSL {
		dsl := v.Snapshot()
		resp.DSL = &dsl
	}
	return resp
}

func validationResultToDTO(result model.ValidationResult) dto.ValidationResultResponse {
	issues := make([]dto.ValidationIssueDTO, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, dto.ValidationIssueDTO{
			Code:     issue.Code,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			NodeID:   issue.NodeID,
			EdgeID:   issue.EdgeID,
		})
	}
	return dto.ValidationResultResponse{Valid: result.Valid, Issues: issues}
}

func (h *WorkflowHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		issues := make([]dto.ValidationIssueDTO, 0, len(valErr.Issues))
		for _, issue := range valErr.Issues {
			issues = append(issues, dto.ValidationIssueDTO{
				Code:     issue.Code,
				Severity: string(issue.Severity),
				Message:  issue.Message,
				NodeID:   issue.NodeID,
				EdgeID:   issue.EdgeID,
			})
		}
		h.respondJSON(w, http.StatusUnprocessableEntity, dto.ValidationResultResponse{Valid: false, Issues: issues})
		return
	}

	switch {
	case errors.Is(err, service.ErrWorkflowNotFound), errors.Is(err, service.ErrVersionNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		h.respondError(w, http.StatusForbidden, "Not allowed")
	case errors.Is(err, service.ErrWorkflowIDTaken):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrDefinitionArchived):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, "error", err, "path", r.URL.Path)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *WorkflowHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *WorkflowHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
