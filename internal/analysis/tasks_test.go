package analysis

import (
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolcity/heatscan/internal/model"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()

	task := reg.Create()
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.TaskQueued, task.Status)

	reg.SetProgress(task.ID, 40)
	got, err := reg.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskProcessing, got.Status)
	assert.Equal(t, 40, got.Progress)

	result := &model.AnalysisResult{Intensity: 5.5}
	reg.Complete(task.ID, result)
	got, err = reg.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, result, got.Result)
}

func TestRegistryFail(t *testing.T) {
	reg := NewRegistry()
	task := reg.Create()

	reg.Fail(task.ID, eris.New("collaborator timeout"))
	got, err := reg.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, got.Status)
	assert.Contains(t, got.Error, "collaborator timeout")
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRegistryProgressClamped(t *testing.T) {
	reg := NewRegistry()
	task := reg.Create()

	reg.SetProgress(task.ID, 150)
	got, _ := reg.Get(task.ID)
	assert.Equal(t, 100, got.Progress)

	reg.SetProgress(task.ID, -5)
	got, _ = reg.Get(task.ID)
	assert.Equal(t, 0, got.Progress)
}

func TestRegistryPrune(t *testing.T) {
	reg := NewRegistry()
	current := time.Now().UTC()
	reg.now = func() time.Time { return current }

	stale := reg.Create()
	reg.Complete(stale.ID, nil)

	running := reg.Create()
	reg.SetProgress(running.ID, 10)

	current = current.Add(2 * time.Hour)
	fresh := reg.Create()
	reg.Complete(fresh.ID, nil)

	removed := reg.Prune(time.Hour)
	assert.Equal(t, 1, removed)

	_, err := reg.Get(stale.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = reg.Get(running.ID)
	assert.NoError(t, err, "in-flight tasks are never pruned")
	_, err = reg.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	task := reg.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(pct int) {
			defer wg.Done()
			reg.SetProgress(task.ID, pct)
		}(i * 2)
		go func() {
			defer wg.Done()
			_, _ = reg.Get(task.ID)
		}()
	}
	wg.Wait()

	got, err := reg.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskProcessing, got.Status)
	assert.Len(t, reg.List(), 1)
}
