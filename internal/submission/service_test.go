package submission

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeprep-cli/internal/api"
	"codeprep-cli/internal/stub"
)

func newStubSubmissions(t *testing.T) Service {
	t.Helper()
	srv := httptest.NewServer(stub.New().Handler())
	t.Cleanup(srv.Close)
	return NewService(api.NewClient(srv.URL, 5*time.Second))
}

func TestForProblem(t *testing.T) {
	svc := newStubSubmissions(t)

	subs, err := svc.ForProblem(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, subs, 1)
	assert.Equal(t, "sub-1", subs[0].ID)
	assert.Equal(t, StatusAccepted, subs[0].Status)
	assert.Equal(t, "Two Sum", subs[0].Problem.Title)
}

func TestForProblemWithoutSubmissions(t *testing.T) {
	svc := newStubSubmissions(t)

	subs, err := svc.ForProblem(context.Background(), "p-unsolved")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestGet(t *testing.T) {
	svc := newStubSubmissions(t)

	sub, err := svc.Get(context.Background(), "sub-1")
	require.NoError(t, err)

	assert.Equal(t, "go", sub.Language)
	require.NotNil(t, sub.MemoryKB)
	assert.Equal(t, 16384, *sub.MemoryKB)
}

func TestGetUnknown(t *testing.T) {
	svc := newStubSubmissions(t)

	_, err := svc.Get(context.Background(), "sub-missing")
	require.Error(t, err)
	assert.Equal(t, "Submission not found", api.Display(err))
}

func TestSaveNote(t *testing.T) {
	svc := newStubSubmissions(t)

	sub, err := svc.SaveNote(context.Background(), "sub-1", "Sort first, then two pointers.", "25m")
	require.NoError(t, err)

	assert.Equal(t, "Sort first, then two pointers.", sub.Note)
	assert.Equal(t, "25m", sub.TimeTaken)

	fetched, err := svc.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, sub.Note, fetched.Note)
}
