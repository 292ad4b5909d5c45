package postgres

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func TestMigrationFS(t *testing.T) {
	t.Parallel()
	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/000001_create_tasks.up.sql",
		"migrations/000001_create_tasks.down.sql",
		"migrations/000002_create_wallet_nonces.up.sql",
		"migrations/000002_create_wallet_nonces.down.sql",
	}, files)
}

// testStore connects to TASKWISER_TEST_DATABASE_URL, skipping when unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TASKWISER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TASKWISER_TEST_DATABASE_URL not set")
	}

	_, err := Migrate(dsn, config.NullLogger())
	require.NoError(t, err)

	s, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStore_Tasks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id := "task-" + uuid.NewString()
	require.NoError(t, s.Save(ctx, store.Task{
		ID:              id,
		Title:           "Write docs",
		Status:          store.TaskDone,
		Reward:          "USDC",
		RewardAmount:    "25",
		AssigneeAddress: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Payable())

	payable, err := s.ListPayable(ctx)
	require.NoError(t, err)
	assert.Contains(t, taskIDs(payable), id)

	require.NoError(t, s.MarkPaid(ctx, id, "0xabc"))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, "0xabc", got.PaidTxHash)
	require.NotNil(t, got.PaidAt)

	_, err = s.Get(ctx, "missing-"+uuid.NewString())
	require.ErrorIs(t, err, wiserr.ErrTaskNotFound)
	require.ErrorIs(t, s.MarkPaid(ctx, "missing-"+uuid.NewString(), "0x"), wiserr.ErrTaskNotFound)
}

func TestStore_Nonces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	addr := "0x" + uuid.NewString()[:8] + "AbCdEf"
	now := time.Now().UTC()

	require.NoError(t, s.PutNonce(ctx, store.Nonce{Address: addr, Value: "n1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	n, err := s.GetNonce(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "n1", n.Value)
	assert.Equal(t, store.NonceKey(addr), n.Address)

	require.NoError(t, s.PutNonce(ctx, store.Nonce{Address: addr, Value: "n2", CreatedAt: now, ExpiresAt: now.Add(-time.Second)}))
	_, err = s.GetNonce(ctx, addr)
	require.ErrorIs(t, err, wiserr.ErrNonceNotFound)

	require.ErrorIs(t, s.ConsumeNonce(ctx, addr, "n2"), wiserr.ErrNonceNotFound)

	require.NoError(t, s.PutNonce(ctx, store.Nonce{Address: addr, Value: "n3", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.ErrorIs(t, s.ConsumeNonce(ctx, addr, "n2"), wiserr.ErrNonceNotFound)
	require.NoError(t, s.ConsumeNonce(ctx, addr, "n3"))
	require.ErrorIs(t, s.ConsumeNonce(ctx, addr, "n3"), wiserr.ErrNonceNotFound)
}

func taskIDs(tasks []store.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
