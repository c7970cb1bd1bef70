package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/memory"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(id string) domain.OutboxEvent {
	return domain.NewOutboxEvent(id, domain.EventOrderPlaced, "order-"+id, []byte(id), time.Unix(0, 0).UTC())
}

func TestOutboxRepo_CreateAndGetPending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	repo := NewOutboxRepo(store)

	require.NoError(t, repo.Create(ctx, newEvent("1")))
	require.NoError(t, repo.Create(ctx, newEvent("2")))
	require.NoError(t, repo.Create(ctx, newEvent("3")))
	assert.Error(t, repo.Create(ctx, newEvent("2")))

	select {
	case <-repo.Pending():
	default:
		t.Fatal("expected pending signal")
	}

	pending, err := repo.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "2", pending[1].ID)

	raw, ok, err := store.Get(ctx, usecase.OutboxKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, raw, `"type":"order.placed"`)
}

func TestOutboxRepo_MarkAsProcessedAndFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepo(memory.NewKVStore())

	require.NoError(t, repo.Create(ctx, newEvent("1")))
	require.NoError(t, repo.Create(ctx, newEvent("2")))

	require.NoError(t, repo.MarkAsFailed(ctx, "1"))
	require.NoError(t, repo.MarkAsProcessed(ctx, "2"))
	assert.Error(t, repo.MarkAsProcessed(ctx, "missing"))

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestOutboxRepo_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()

	require.NoError(t, NewOutboxRepo(store).Create(ctx, newEvent("1")))

	pending, err := NewOutboxRepo(store).GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []byte("1"), pending[0].Payload)
}

func TestPruneProcessed(t *testing.T) {
	var events []domain.OutboxEvent
	for i := 0; i < retainProcessed+5; i++ {
		ev := newEvent(fmt.Sprint(i))
		ev.Status = domain.OutboxProcessed
		events = append(events, ev)
	}
	events = append(events, newEvent("pending"))

	pruned := pruneProcessed(events)

	assert.Len(t, pruned, retainProcessed+1)
	assert.Equal(t, "5", pruned[0].ID)
	assert.Equal(t, "pending", pruned[len(pruned)-1].ID)
}
