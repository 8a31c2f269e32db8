package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var versionCodePattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// VersionCode is a structured "major.minor.patch" version value.
type VersionCode struct {
	Major int
	Minor int
	Patch int
}

// InitialVersionCode is the code every definition's first version gets.
func InitialVersionCode() VersionCode {
	return VersionCode{Major: 1, Minor: 0, Patch: 0}
}

// ParseVersionCode parses "major.minor.patch". A malformed or empty code
// sanitizes to 1.0.0 with ok=false; callers treat that as a deliberate
// reset, not an error.
func ParseVersionCode(s string) (code VersionCode, ok bool) {
	m := versionCodePattern.FindStringSubmatch(s)
	if m == nil {
		return InitialVersionCode(), false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return VersionCode{Major: major, Minor: minor, Patch: patch}, true
}

func (c VersionCode) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Major, c.Minor, c.Patch)
}

// NextPatch returns the code with the patch component incremented.
func (c VersionCode) NextPatch() VersionCode {
	return VersionCode{Major: c.Major, Minor: c.Minor, Patch: c.Patch + 1}
}

// IsZero reports whether the code is the zero value (never a real code).
func (c VersionCode) IsZero() bool {
	return c.Major == 0 && c.Minor == 0 && c.Patch == 0
}

// VersionStatus is the lifecycle status of one workflow version.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "DRAFT"
	VersionStatusPublished VersionStatus = "PUBLISHED"
	VersionStatusArchived  VersionStatus = "ARCHIVED"
)

// Version is one immutable-once-published revision of a workflow
// definition, carrying the full DSL snapshot it was saved with.
type Version struct {
	id           string
	definitionID string
	code         VersionCode
	status       VersionStatus
	snapshot     WorkflowDSL
	publishedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewVersion creates a DRAFT version.
func NewVersion(id, definitionID string, code VersionCode, snapshot WorkflowDSL) *Version {
	now := time.Now()
	return &Version{
		id:           id,
		definitionID: definitionID,
		code:         code,
		status:       VersionStatusDraft,
		snapshot:     snapshot,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (v *Version) ID() string            { return v.id }
func (v *Version) DefinitionID() string  { return v.definitionID }
func (v *Version) Code() VersionCode     { return v.code }
func (v *Version) Status() VersionStatus { return v.status }
func (v *Version) Snapshot() WorkflowDSL { return v.snapshot }
func (v *Version) CreatedAt() time.Time  { return v.createdAt }
func (v *Version) UpdatedAt() time.Time  { return v.updatedAt }

// PublishedAt returns the publish timestamp, nil for unpublished versions.
func (v *Version) PublishedAt() *time.Time { return v.publishedAt }

// Publish transitions DRAFT → PUBLISHED. Archived or already published
// versions cannot be published.
func (v *Version) Publish(at time.Time) error {
	if v.status != VersionStatusDraft {
		return fmt.Errorf("version %s cannot be published from status %s", v.code, v.status)
	}
	v.status = VersionStatusPublished
	v.publishedAt = &at
	v.updatedAt = at
	return nil
}

// Archive transitions the version to ARCHIVED. Archiving is idempotent.
func (v *Version) Archive() {
	if v.status == VersionStatusArchived {
		return
	}
	v.status = VersionStatusArchived
	v.updatedAt = time.Now()
}

// UpdateSnapshot replaces the stored DSL. Only drafts are editable.
func (v *Version) UpdateSnapshot(snapshot WorkflowDSL) error {
	if v.status != VersionStatusDraft {
		return fmt.Errorf("version %s is %s and no longer editable", v.code, v.status)
	}
	v.snapshot = snapshot
	v.updatedAt = time.Now()
	return nil
}

// ReconstructVersion rebuilds a version from persisted state.
func ReconstructVersion(
	id, definitionID string,
	code VersionCode,
	status VersionStatus,
	snapshot WorkflowDSL,
	publishedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Version {
	return &Version{
		id:           id,
		definitionID: definitionID,
		code:         code,
		status:       status,
		snapshot:     snapshot,
		publishedAt:  publishedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}
