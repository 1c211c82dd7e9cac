package contextstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflowhq/devflow/contracts"
)

// newTestStore returns an initialized in-memory store, closed on test end.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Config{InMemory: true, AutoSave: true})
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Cleanup() })
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create("session", contracts.Context{"user": "dev"}))

	rec, ok := s.Get("session")
	require.True(t, ok)
	assert.Equal(t, "session", rec.ID)
	assert.Equal(t, "dev", rec.Data["user"])
	assert.Equal(t, 1, rec.Version)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestStore_Get_Unknown(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestStore_Update(t *testing.T) {
	tests := []struct {
		name     string
		merge    bool
		update   contracts.Context
		wantData contracts.Context
	}{
		{
			name:     "merge keeps existing keys",
			merge:    true,
			update:   contracts.Context{"b": 2},
			wantData: contracts.Context{"a": 1, "b": 2},
		},
		{
			name:     "replace drops existing keys",
			merge:    false,
			update:   contracts.Context{"b": 2},
			wantData: contracts.Context{"b": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, s.Create("c", contracts.Context{"a": 1}))

			require.NoError(t, s.Update("c", tt.update, tt.merge))

			rec, _ := s.Get("c")
			assert.Equal(t, tt.wantData, rec.Data)
			assert.Equal(t, 2, rec.Version)
		})
	}
}

func TestStore_Update_UnknownCreates(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Update("fresh", contracts.Context{"k": "v"}, true))

	rec, ok := s.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Version)
}

func TestStore_UpdateDeleteConcurrent(t *testing.T) {
	dir := t.TempDir()

	s := New(Config{StorageDir: dir, AutoSave: true})
	require.NoError(t, s.Initialize())

	// Update holds the lock across its existence check and write, so a
	// concurrent Delete can never let a stale record land back on disk.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Update("contested", contracts.Context{"i": i}, true)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Delete("contested")
		}
	}()
	wg.Wait()

	_, inMemory := s.Get("contested")
	require.NoError(t, s.Cleanup())

	reopened := New(Config{StorageDir: dir, AutoSave: true})
	require.NoError(t, reopened.Initialize())
	t.Cleanup(func() { _ = reopened.Cleanup() })

	_, onDisk := reopened.Get("contested")
	assert.Equal(t, inMemory, onDisk, "working set and disk must agree")
}

func TestStore_History(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("c", nil))
	require.NoError(t, s.Update("c", contracts.Context{"x": 1}, true))
	require.NoError(t, s.Update("c", contracts.Context{"y": 2}, true))

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].ContextID)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, []string{"x"}, history[0].Changed)
	assert.Equal(t, 3, history[1].Version)
	assert.NotEmpty(t, history[0].ID)
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("c", nil))

	assert.True(t, s.Delete("c"))
	assert.False(t, s.Delete("c"))
	_, ok := s.Get("c")
	assert.False(t, ok)
}

func TestStore_Share(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("src", contracts.Context{"a": 1, "b": 2, "c": 3}))
	require.NoError(t, s.Create("dst", contracts.Context{"own": true}))

	shared, err := s.Share("src", "dst", []string{"a", "c", "ghost"})
	require.NoError(t, err)
	assert.True(t, shared)

	dst, _ := s.Get("dst")
	assert.Equal(t, 1, dst.Data["a"])
	assert.Equal(t, 3, dst.Data["c"])
	assert.Equal(t, true, dst.Data["own"])
	_, hasGhost := dst.Data["ghost"]
	assert.False(t, hasGhost)
}

func TestStore_Share_NothingToShare(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("src", contracts.Context{"a": 1}))

	shared, err := s.Share("src", "dst", []string{"ghost"})
	require.NoError(t, err)
	assert.False(t, shared)

	shared, err = s.Share("missing", "dst", []string{"a"})
	require.NoError(t, err)
	assert.False(t, shared)
}

func TestStore_PersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := New(Config{StorageDir: dir, AutoSave: true})
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Create("durable", contracts.Context{"answer": float64(42)}))
	require.NoError(t, s.Cleanup())

	reopened := New(Config{StorageDir: dir, AutoSave: true})
	require.NoError(t, reopened.Initialize())
	t.Cleanup(func() { _ = reopened.Cleanup() })

	rec, ok := reopened.Get("durable")
	require.True(t, ok)
	// JSON round trip: numbers come back as float64.
	assert.Equal(t, float64(42), rec.Data["answer"])
	assert.Equal(t, 1, rec.Version)
}

func TestStore_Load_DiscardsUnsavedChanges(t *testing.T) {
	s := New(Config{InMemory: true, AutoSave: false})
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Cleanup() })

	require.NoError(t, s.Create("c", contracts.Context{"v": "saved"}))
	require.NoError(t, s.Save("c"))
	require.NoError(t, s.Update("c", contracts.Context{"v": "dirty"}, true))

	require.True(t, s.Load("c"))

	rec, _ := s.Get("c")
	assert.Equal(t, "saved", rec.Data["v"])
}

func TestStore_Load_Unknown(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Load("never-saved"))
}

func TestStore_Status(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("one", nil))

	status := s.Status()
	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, true, status["initialized"])
	assert.Equal(t, 1, status["contexts_count"])
	assert.Equal(t, true, status["auto_save"])
}

func TestStore_Validate(t *testing.T) {
	s := New(Config{InMemory: true})
	require.ErrorIs(t, s.Validate(), contracts.ErrStoreClosed)

	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Cleanup() })
	assert.NoError(t, s.Validate())
}

var _ contracts.Component = (*Store)(nil)
