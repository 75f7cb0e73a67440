package workspace

import (
	"testing"
	"time"

	"exam-allocator/internal/allocator"
	"exam-allocator/internal/models"
	"exam-allocator/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestWorkspace_Assignments(t *testing.T) {
	ws := New(allocator.ModeNearest)

	_, err := ws.Assignments()
	require.ErrorIs(t, err, ErrNoStudents)

	ws.SetStudents(&roster.StudentRoster{Students: []models.Student{{Name: "Asha", PostalCode: 560001}}})
	_, err = ws.Assignments()
	require.ErrorIs(t, err, allocator.ErrInsufficientData)

	ws.SetCenters(&roster.CenterRoster{Centers: []models.Center{
		{Name: "C1", PostalCode: 560010},
		{Name: "C2", PostalCode: 560002},
	}})
	got, err := ws.Assignments()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C2", got[0].Center.Name)

	ws.SetMode(allocator.ModeRoundRobin)
	got, err = ws.Assignments()
	require.NoError(t, err)
	assert.Equal(t, "C1", got[0].Center.Name)
	assert.Equal(t, allocator.ModeRoundRobin, ws.Mode())
}

func TestWorkspace_ReloadReplacesWholesale(t *testing.T) {
	ws := New(allocator.ModeNearest)
	ws.SetStudents(&roster.StudentRoster{
		Students: []models.Student{{Name: "A", PostalCode: 1}, {Name: "B", PostalCode: 2}},
		Rejected: []*roster.RecordError{{Kind: roster.KindStudents, Row: 4, Err: roster.ErrFormat}},
	})
	ws.SetStudents(&roster.StudentRoster{Students: []models.Student{{Name: "C", PostalCode: 3}}})

	snap := ws.Snapshot()

	assert.Equal(t, []models.Student{{Name: "C", PostalCode: 3}}, snap.Students)
	assert.Empty(t, snap.Rejected)
}

func TestWorkspace_SnapshotCombinesRejected(t *testing.T) {
	ws := New(allocator.ModeNearest)
	studentErr := &roster.RecordError{Kind: roster.KindStudents, Row: 2, Err: roster.ErrFormat}
	centerErr := &roster.RecordError{Kind: roster.KindCenters, Row: 3, Err: roster.ErrFormat}
	ws.SetCenters(&roster.CenterRoster{Rejected: []*roster.RecordError{centerErr}})
	ws.SetStudents(&roster.StudentRoster{Rejected: []*roster.RecordError{studentErr}})

	snap := ws.Snapshot()

	assert.Equal(t, []*roster.RecordError{studentErr, centerErr}, snap.Rejected)
}

func TestWorkspace_Logs(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	ws := newWorkspace(allocator.ModeNearest, clock.now)

	ws.Log("Students file received.")
	ws.SetCenters(&roster.CenterRoster{Centers: []models.Center{{Name: "C1", PostalCode: 1}}})

	logs := ws.Logs()
	assert.Equal(t, []string{
		"[09:30:00] Students file received.",
		"[09:30:00] 1 exam centers loaded, 0 rows rejected.",
	}, logs)

	logs[0] = "changed"
	assert.Equal(t, "[09:30:00] Students file received.", ws.Logs()[0])
}

func TestStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(allocator.ModeRoundRobin)
	store.now = clock.now

	ws := store.Create()
	assert.Equal(t, allocator.ModeRoundRobin, ws.Mode())
	assert.Same(t, ws, store.Get(ws.ID))
	assert.Nil(t, store.Get("unknown"))

	same, created := store.GetOrCreate(ws.ID)
	assert.False(t, created)
	assert.Same(t, ws, same)

	other, created := store.GetOrCreate("unknown")
	assert.True(t, created)
	assert.NotEqual(t, ws.ID, other.ID)
	assert.Equal(t, 2, store.Len())

	clock.t = clock.t.Add(2 * time.Hour)
	other.Log("touch")
	other.SetMode(allocator.ModeNearest)

	assert.Equal(t, 1, store.Prune(time.Hour))
	assert.Nil(t, store.Get(ws.ID))
	assert.NotNil(t, store.Get(other.ID))

	assert.True(t, store.Delete(other.ID))
	assert.False(t, store.Delete(other.ID))
	assert.Equal(t, 0, store.Len())
}
