package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOutboxEvents(t *testing.T, repo outbox.Repository, n int) []string {
	t.Helper()
	companyID := uuid.NewString()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		runID := uuid.NewString()
		e := outbox.Event{
			ID:            uuid.NewString(),
			CompanyID:     companyID,
			AggregateType: outbox.AggregatePayrollRun,
			AggregateID:   runID,
			EventType:     outbox.EventRunCommitted,
			Topic:         "payroll.events",
			Payload:       []byte(`{"run_id":"` + runID + `"}`),
			Status:        outbox.StatusPending,
		}
		require.NoError(t, repo.Create(context.Background(), e))
		ids = append(ids, e.ID)
	}
	return ids
}

func TestOutboxRepository_ConcurrentClaimsDoNotOverlap(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewOutboxRepository(setup.DB)
	ids := createOutboxEvents(t, repo, 20)

	const workers = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		start   = make(chan struct{})
		claimed = map[string]int{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			events, err := repo.ClaimPending(ctx, 5, time.Minute)
			assert.NoError(t, err)
			mu.Lock()
			for _, e := range events {
				claimed[e.ID]++
			}
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	assert.Len(t, claimed, len(ids))
	for id, n := range claimed {
		assert.Equal(t, 1, n, "event %s claimed more than once", id)
	}

	again, err := repo.ClaimPending(ctx, 50, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestOutboxRepository_ClaimOrderAndLease(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewOutboxRepository(setup.DB)
	ids := createOutboxEvents(t, repo, 3)

	events, err := repo.ClaimPending(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[0], events[0].ID)
	assert.Equal(t, ids[1], events[1].ID)

	// an expired lease makes the rows due again
	require.NoError(t, repo.MarkSent(ctx, ids[0]))
	events, err = repo.ClaimPending(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[1], events[0].ID)
	assert.Equal(t, ids[2], events[1].ID)
	assert.True(t, events[0].NextRetryAt.After(time.Now().Add(30*time.Second)))
}
