package workspace

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"exam-allocator/internal/allocator"
	"exam-allocator/internal/models"
	"exam-allocator/internal/roster"

	"github.com/google/uuid"
)

var ErrNoStudents = errors.New("no students loaded")

// Workspace holds the lists one user is currently working with.
// Each load replaces its list wholesale; allocation is recomputed on read.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	students  []models.Student
	centers   []models.Center
	loaded    map[roster.Kind]bool
	rejected  map[roster.Kind][]*roster.RecordError
	mode      allocator.Mode
	logs      []string
	updatedAt time.Time
	now       func() time.Time
}

func New(mode allocator.Mode) *Workspace {
	return newWorkspace(mode, time.Now)
}

func newWorkspace(mode allocator.Mode, now func() time.Time) *Workspace {
	ts := now()
	return &Workspace{
		ID:        uuid.New().String(),
		CreatedAt: ts,
		loaded:    make(map[roster.Kind]bool),
		rejected:  make(map[roster.Kind][]*roster.RecordError),
		mode:      mode,
		logs:      []string{},
		updatedAt: ts,
		now:       now,
	}
}

func (w *Workspace) Log(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logLocked(msg)
}

func (w *Workspace) logLocked(msg string) {
	ts := w.now().Format("15:04:05")
	w.logs = append(w.logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (w *Workspace) Logs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	logs := make([]string, len(w.logs))
	copy(logs, w.logs)
	return logs
}

func (w *Workspace) SetStudents(r *roster.StudentRoster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.students = r.Students
	w.loaded[roster.KindStudents] = true
	w.rejected[roster.KindStudents] = r.Rejected
	w.updatedAt = w.now()
	w.logLocked(fmt.Sprintf("%d students loaded, %d rows rejected.", len(r.Students), len(r.Rejected)))
}

func (w *Workspace) SetCenters(r *roster.CenterRoster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.centers = r.Centers
	w.loaded[roster.KindCenters] = true
	w.rejected[roster.KindCenters] = r.Rejected
	w.updatedAt = w.now()
	w.logLocked(fmt.Sprintf("%d exam centers loaded, %d rows rejected.", len(r.Centers), len(r.Rejected)))
}

func (w *Workspace) SetMode(mode allocator.Mode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = mode
	w.updatedAt = w.now()
	w.logLocked(fmt.Sprintf("Assignment mode set to %s.", mode))
}

func (w *Workspace) Mode() allocator.Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// Snapshot is a read-only copy of the workspace inputs.
type Snapshot struct {
	Students []models.Student
	Centers  []models.Center
	Mode     allocator.Mode
	Rejected []*roster.RecordError
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rejected := make([]*roster.RecordError, 0, len(w.rejected[roster.KindStudents])+len(w.rejected[roster.KindCenters]))
	rejected = append(rejected, w.rejected[roster.KindStudents]...)
	rejected = append(rejected, w.rejected[roster.KindCenters]...)

	return Snapshot{
		Students: w.students,
		Centers:  w.centers,
		Mode:     w.mode,
		Rejected: rejected,
	}
}

// Assignments allocates the current snapshot with the selected mode.
func (w *Workspace) Assignments() ([]models.Assignment, error) {
	w.mu.RLock()
	students, centers, mode := w.students, w.centers, w.mode
	studentsLoaded := w.loaded[roster.KindStudents]
	w.mu.RUnlock()

	if !studentsLoaded {
		return nil, ErrNoStudents
	}
	return allocator.Assign(mode, students, centers)
}

func (w *Workspace) UpdatedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.updatedAt
}
