package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/analyzer"
)

func TestTracker_StartCompleteFail(t *testing.T) {
	tr := NewTracker()
	tr.Start("a.go")
	tr.Complete("a.go", []analyzer.Diagnostic{{Message: "missing link"}})
	tr.Start("b.go")
	tr.Fail("b.go", errors.New("parse failure"))

	a, err := tr.Get("a.go")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, a.Status)
	assert.Len(t, a.Diagnostics, 1)

	b, err := tr.Get("b.go")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Error(t, b.Err)
}

func TestTracker_Get_UnknownFile(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Get("missing.go")
	assert.Error(t, err)
}

func TestTracker_IngestOutcomes(t *testing.T) {
	tr := NewTracker()
	tr.IngestOutcomes([]analyzer.FileOutcome{
		{SourcePath: "a.go"},
		{SourcePath: "b.go", Err: errors.New("boom")},
	})

	summary := tr.Summary()
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestTracker_List_FiltersByStatusAndPaginates(t *testing.T) {
	tr := NewTracker()
	tr.Complete("a.go", nil)
	tr.Fail("b.go", errors.New("x"))
	tr.Complete("c.go", nil)

	result, err := tr.List(ListFilter{Status: StatusComplete})
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.TotalSize)

	page1, err := tr.List(ListFilter{PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page1.Records, 1)
	assert.Equal(t, "a.go", page1.NextPageToken)

	page2, err := tr.List(ListFilter{PageToken: page1.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, page2.Records, 2)
}

func TestTracker_List_InvalidPageToken(t *testing.T) {
	tr := NewTracker()
	tr.Complete("a.go", nil)
	_, err := tr.List(ListFilter{PageToken: "does-not-exist"})
	assert.Error(t, err)
}

func TestTracker_Summary_CountsDiagnostics(t *testing.T) {
	tr := NewTracker()
	tr.Complete("a.go", []analyzer.Diagnostic{{Message: "m1"}, {Message: "m2"}})
	tr.Complete("b.go", nil)

	summary := tr.Summary()
	assert.Equal(t, 2, summary.DiagnosticCount)
}
