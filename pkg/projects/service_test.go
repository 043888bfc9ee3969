package projects

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/observability"
)

func newTestService(t *testing.T) (*Service, *MemoryStore, *audit.MemoryLogger) {
	t.Helper()
	store := NewMemoryStore()
	sink := audit.NewMemoryLogger()
	log := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewService(store, audit.NewRecorder(sink, log, nil)), store, sink
}

func TestCreateProject(t *testing.T) {
	svc, _, sink := newTestService(t)

	deadline := time.Now().AddDate(0, 1, 0)
	ctx := contextkeys.WithSubject(context.Background(), "manager@example.com")
	created, err := svc.Create(ctx, Input{
		Name: "Rollout", Description: "Q4 rollout", Deadline: &deadline, Status: StatusPlanned,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionCreate, records[0].ActionType)
	assert.Equal(t, "Project", records[0].EntityType)
	assert.Equal(t, "1", records[0].EntityID)
	assert.Equal(t, "manager@example.com", records[0].Actor)
	require.NotNil(t, records[0].Payload)
	assert.Equal(t, "Rollout", records[0].Payload["name"])
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _, sink := newTestService(t)

	tests := []struct {
		name  string
		input Input
	}{
		{name: "missing name", input: Input{Status: StatusPlanned}},
		{name: "bad status", input: Input{Name: "x", Status: Status("LAUNCHED")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, sink.Records())
}

func TestUpdateProject(t *testing.T) {
	svc, _, sink := newTestService(t)

	created, err := svc.Create(context.Background(), Input{Name: "Rollout", Status: StatusPlanned})
	require.NoError(t, err)
	sink.Reset()

	updated, err := svc.Update(context.Background(), created.ID, Input{
		Name: "Rollout", Status: StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionUpdate, records[0].ActionType)
}

func TestUpdateMissingProject(t *testing.T) {
	svc, _, sink := newTestService(t)

	_, err := svc.Update(context.Background(), 404, Input{Name: "x", Status: StatusPlanned})
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Empty(t, sink.Records())
}

func TestDeleteProject(t *testing.T) {
	svc, store, sink := newTestService(t)

	created, err := svc.Create(context.Background(), Input{Name: "Doomed", Status: StatusPlanned})
	require.NoError(t, err)
	sink.Reset()

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = store.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionDelete, records[0].ActionType)
}

func TestProjectsWithoutTasks(t *testing.T) {
	svc, store, _ := newTestService(t)

	a, err := svc.Create(context.Background(), Input{Name: "A", Status: StatusPlanned})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), Input{Name: "B", Status: StatusPlanned})
	require.NoError(t, err)

	store.HasTasks = func(_ context.Context, projectID int64) (bool, error) {
		return projectID == a.ID, nil
	}

	empty, err := svc.WithoutTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, b.ID, empty[0].ID)
}
