package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionCode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "initial", input: "1.0.0", want: "1.0.0", wantOK: true},
		{name: "multi digit", input: "12.34.56", want: "12.34.56", wantOK: true},
		{name: "zero major", input: "0.9.0", want: "0.9.0", wantOK: true},
		{name: "empty sanitizes", input: "", want: "1.0.0", wantOK: false},
		{name: "two segments sanitize", input: "1.2", want: "1.0.0", wantOK: false},
		{name: "four segments sanitize", input: "1.2.3.4", want: "1.0.0", wantOK: false},
		{name: "prefixed sanitizes", input: "v1.2.3", want: "1.0.0", wantOK: false},
		{name: "garbage sanitizes", input: "not-a-version", want: "1.0.0", wantOK: false},
		{name: "negative sanitizes", input: "-1.0.0", want: "1.0.0", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ParseVersionCode(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, code.String())
		})
	}
}

func TestVersionCodeNextPatch(t *testing.T) {
	code, ok := ParseVersionCode("2.3.1")
	require.True(t, ok)
	assert.Equal(t, "2.3.2", code.NextPatch().String())

	assert.Equal(t, "1.0.1", InitialVersionCode().NextPatch().String())
}

func TestVersionPublish(t *testing.T) {
	v := NewVersion("ver-1", "def-1", InitialVersionCode(), WorkflowDSL{Name: "Fraud check"})
	assert.Equal(t, VersionStatusDraft, v.Status())
	assert.Nil(t, v.PublishedAt())

	publishedAt := time.Now()
	require.NoError(t, v.Publish(publishedAt))
	assert.Equal(t, VersionStatusPublished, v.Status())
	require.NotNil(t, v.PublishedAt())
	assert.Equal(t, publishedAt, *v.PublishedAt())

	// Publishing twice is rejected.
	assert.Error(t, v.Publish(time.Now()))
}

func TestVersionPublishFromArchived(t *testing.T) {
	v := NewVersion("ver-1", "def-1", InitialVersionCode(), WorkflowDSL{})
	v.Archive()
	assert.Equal(t, VersionStatusArchived, v.Status())
	assert.Error(t, v.Publish(time.Now()))
}

func TestVersionArchiveIdempotent(t *testing.T) {
	v := NewVersion("ver-1", "def-1", InitialVersionCode(), WorkflowDSL{})
	v.Archive()
	v.Archive()
	assert.Equal(t, VersionStatusArchived, v.Status())
}

func TestVersionUpdateSnapshot(t *testing.T) {
	v := NewVersion("ver-1", "def-1", InitialVersionCode(), WorkflowDSL{Name: "before"})
	require.NoError(t, v.UpdateSnapshot(WorkflowDSL{Name: "after"}))
	assert.Equal(t, "after", v.Snapshot().Name)

	require.NoError(t, v.Publish(time.Now()))
	assert.Error(t, v.UpdateSnapshot(WorkflowDSL{Name: "too late"}))
	assert.Equal(t, "after", v.Snapshot().Name)
}
