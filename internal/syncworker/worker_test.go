package syncworker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparxfest/internal/model"
	"sparxfest/internal/queue"
)

type replayRepo struct {
	mu       sync.Mutex
	nextID   int64
	created  []model.Registration
	failFrom int
}

func newReplayRepo() *replayRepo {
	return &replayRepo{nextID: 1, failFrom: -1}
}

func (r *replayRepo) CreateRegistration(_ context.Context, reg *model.Registration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFrom >= 0 && len(r.created) >= r.failFrom {
		return 0, errors.New("storage still down")
	}
	id := r.nextID
	r.nextID++
	r.created = append(r.created, *reg)
	return id, nil
}

func (r *replayRepo) GetAllRegistrations(context.Context) ([]model.Registration, error) {
	return nil, nil
}

func (r *replayRepo) GetRegistrationByID(context.Context, int64) (*model.Registration, error) {
	return nil, errors.New("not implemented")
}

func (r *replayRepo) UpdateRegistration(context.Context, int64, *model.Registration) error {
	return nil
}

func (r *replayRepo) UpdateRegistrationStatusTx(context.Context, int64, string) error { return nil }
func (r *replayRepo) DeleteRegistration(context.Context, int64) error                 { return nil }
func (r *replayRepo) MigrateUp(string) error                                          { return nil }
func (r *replayRepo) MigrateDown(string) error                                        { return nil }

func openTestStore(t *testing.T) *queue.Store {
	t.Helper()
	log := zerolog.Nop()
	store, err := queue.Open(filepath.Join(t.TempDir(), "queue.db"), &log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func park(t *testing.T, store *queue.Store, id, name string) {
	t.Helper()
	reg := &model.Registration{
		FullName:      name,
		Email:         name + "@example.com",
		Events:        []string{"Code Trace"},
		TotalFee:      50,
		PaymentMethod: "cash",
		Status:        model.StatusPending,
	}
	require.NoError(t, store.Put(context.Background(), id, reg))
}

func TestDrainReplaysQueueInOrder(t *testing.T) {
	store := openTestStore(t)
	repo := newReplayRepo()
	worker := NewWorker(nil, repo, store, nil)

	park(t, store, "id-1", "first")
	park(t, store, "id-2", "second")
	park(t, store, "id-3", "third")

	worker.drain(context.Background())

	require.Len(t, repo.created, 3)
	assert.Equal(t, "first", repo.created[0].FullName)
	assert.Equal(t, "second", repo.created[1].FullName)
	assert.Equal(t, "third", repo.created[2].FullName)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries, "replayed entries are removed")
}

func TestDrainStopsAtFirstFailure(t *testing.T) {
	store := openTestStore(t)
	repo := newReplayRepo()
	repo.failFrom = 1
	worker := NewWorker(nil, repo, store, nil)

	park(t, store, "id-1", "first")
	park(t, store, "id-2", "second")
	park(t, store, "id-3", "third")

	worker.drain(context.Background())

	require.Len(t, repo.created, 1)
	assert.Equal(t, "first", repo.created[0].FullName)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "unreplayed entries stay queued")
	assert.Equal(t, "id-2", entries[0].ID)
	assert.Equal(t, "id-3", entries[1].ID)
}

func TestDrainRetriesLeftoversOnNextPass(t *testing.T) {
	store := openTestStore(t)
	repo := newReplayRepo()
	repo.failFrom = 1
	worker := NewWorker(nil, repo, store, nil)

	park(t, store, "id-1", "first")
	park(t, store, "id-2", "second")

	worker.drain(context.Background())
	require.Len(t, repo.created, 1)

	repo.failFrom = -1
	worker.drain(context.Background())

	require.Len(t, repo.created, 2)
	assert.Equal(t, "second", repo.created[1].FullName)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDrainEmptyQueueIsNoOp(t *testing.T) {
	store := openTestStore(t)
	repo := newReplayRepo()
	worker := NewWorker(nil, repo, store, nil)

	worker.drain(context.Background())
	assert.Empty(t, repo.created)
}
