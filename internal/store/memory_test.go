package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func doneTask(id string) Task {
	return Task{
		ID:              id,
		Title:           "task " + id,
		Status:          TaskDone,
		Reward:          "USDC",
		RewardAmount:    "10",
		AssigneeAddress: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	}
}

func TestTask_Payable(t *testing.T) {
	t.Parallel()
	assert.True(t, doneTask("1").Payable())

	notDone := doneTask("2")
	notDone.Status = TaskReview
	assert.False(t, notDone.Payable())

	paid := doneTask("3")
	paid.Paid = true
	assert.False(t, paid.Payable())

	noAssignee := doneTask("4")
	noAssignee.AssigneeAddress = ""
	assert.False(t, noAssignee.Payable())

	noReward := doneTask("5")
	noReward.RewardAmount = ""
	assert.False(t, noReward.Payable())
}

func TestMemory_Tasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Save(ctx, doneTask("b")))
	require.NoError(t, m.Save(ctx, doneTask("a")))
	review := doneTask("c")
	review.Status = TaskReview
	require.NoError(t, m.Save(ctx, review))
	require.ErrorIs(t, m.Save(ctx, Task{}), wiserr.ErrInvalidInput)

	payable, err := m.ListPayable(ctx)
	require.NoError(t, err)
	require.Len(t, payable, 2)
	assert.Equal(t, "b", payable[0].ID)
	assert.Equal(t, "a", payable[1].ID)

	require.NoError(t, m.MarkPaid(ctx, "b", "0xhash"))
	got, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, "0xhash", got.PaidTxHash)
	require.NotNil(t, got.PaidAt)

	payable, err = m.ListPayable(ctx)
	require.NoError(t, err)
	assert.Len(t, payable, 1)

	_, err = m.Get(ctx, "zzz")
	require.ErrorIs(t, err, wiserr.ErrTaskNotFound)
	require.ErrorIs(t, m.MarkPaid(ctx, "zzz", "0x"), wiserr.ErrTaskNotFound)
	assert.Len(t, m.Tasks(), 3)
}

func TestMemory_Nonces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return now }

	addr := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	require.NoError(t, m.PutNonce(ctx, Nonce{Address: addr, Value: "abc", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}))

	n, err := m.GetNonce(ctx, "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")
	require.NoError(t, err)
	assert.Equal(t, "abc", n.Value)
	assert.Equal(t, "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", n.Address)

	now = now.Add(10 * time.Minute)
	_, err = m.GetNonce(ctx, addr)
	require.ErrorIs(t, err, wiserr.ErrNonceNotFound)

	require.NoError(t, m.PutNonce(ctx, Nonce{Address: addr, Value: "def", ExpiresAt: now.Add(time.Minute)}))
	require.ErrorIs(t, m.ConsumeNonce(ctx, addr, "abc"), wiserr.ErrNonceNotFound)
	require.NoError(t, m.ConsumeNonce(ctx, addr, "def"))
	_, err = m.GetNonce(ctx, addr)
	require.ErrorIs(t, err, wiserr.ErrNonceNotFound)
	require.ErrorIs(t, m.ConsumeNonce(ctx, addr, "def"), wiserr.ErrNonceNotFound)

	require.NoError(t, m.PutNonce(ctx, Nonce{Address: addr, Value: "ghi", ExpiresAt: now.Add(time.Minute)}))
	now = now.Add(time.Minute)
	require.ErrorIs(t, m.ConsumeNonce(ctx, addr, "ghi"), wiserr.ErrNonceNotFound)
}

func TestMemory_ConsumeNonceConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()
	addr := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	require.NoError(t, m.PutNonce(ctx, Nonce{Address: addr, Value: "abc", ExpiresAt: time.Now().Add(time.Hour)}))

	const workers = 16
	var wg sync.WaitGroup
	var won atomic.Int32
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.ConsumeNonce(ctx, addr, "abc") == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won.Load())
}
