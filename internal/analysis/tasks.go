package analysis

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/coolcity/heatscan/internal/model"
)

// ErrTaskNotFound is returned for lookups of unknown task IDs.
var ErrTaskNotFound = eris.New("tasks: task not found")

// Registry tracks background analysis tasks in memory. History does not
// survive a restart. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
	now   func() time.Time
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*model.Task),
		now:   time.Now,
	}
}

// Create registers a new queued task and returns it.
func (r *Registry) Create() model.Task {
	now := r.now().UTC()
	task := &model.Task{
		ID:        uuid.NewString(),
		Status:    model.TaskQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()
	return *task
}

// Get returns a snapshot of a task.
func (r *Registry) Get(id string) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return model.Task{}, eris.Wrapf(ErrTaskNotFound, "id %s", id)
	}
	return *task, nil
}

// SetProgress marks a task processing at the given percentage.
func (r *Registry) SetProgress(id string, percent int) {
	r.update(id, func(t *model.Task) {
		t.Status = model.TaskProcessing
		t.Progress = clampPercent(percent)
	})
}

// Complete marks a task finished with its result.
func (r *Registry) Complete(id string, result *model.AnalysisResult) {
	r.update(id, func(t *model.Task) {
		t.Status = model.TaskCompleted
		t.Progress = 100
		t.Result = result
		t.Error = ""
	})
}

// Fail marks a task failed with an error message.
func (r *Registry) Fail(id string, err error) {
	r.update(id, func(t *model.Task) {
		t.Status = model.TaskFailed
		t.Error = err.Error()
	})
}

// List returns snapshots of every task, unordered.
func (r *Registry) List() []model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out
}

// Prune drops terminal tasks older than maxAge and returns how many were
// removed.
func (r *Registry) Prune(maxAge time.Duration) int {
	cutoff := r.now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, task := range r.tasks {
		terminal := task.Status == model.TaskCompleted || task.Status == model.TaskFailed
		if terminal && task.UpdatedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) update(id string, fn func(*model.Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return
	}
	fn(task)
	task.UpdatedAt = r.now().UTC()
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
