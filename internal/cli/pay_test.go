package cli

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	"github.com/Asad272002/TaskWiser-V2/internal/provider/mock"
	"github.com/Asad272002/TaskWiser-V2/internal/report"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func decodePayResult(t *testing.T, out string) PayResult {
	t.Helper()
	var res PayResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestPay_SingleRecipient(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "1.5", "--token", "usdc", "--yes")
	require.NoError(t, err)

	res := decodePayResult(t, out)
	assert.Equal(t, "completed", res.State)
	assert.Equal(t, "USDC", res.Token)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Confirmed)
	assert.Equal(t, []string{"0x" + strings.Repeat("0", 63) + "1"}, res.TxHashes)
	require.NotEmpty(t, res.ReportDir)

	sent := env.wallet.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, testAccount, sent[0].From)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(sent[0].Data[:4]))

	rep, err := report.Load(res.ReportDir)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, rep.RunID)
	assert.True(t, rep.Completed())
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "1.5", rep.Rows[0].Amount)
	assert.FileExists(t, filepath.Join(res.ReportDir, report.PayoutsFile))
}

func TestPay_BatchStopsAtRejection(t *testing.T) {
	env := newTestEnv(t)
	env.wallet.SendFunc = func(n int, _ provider.TxRequest) (string, error) {
		if n == 1 {
			return "", mock.Rejected()
		}
		return "0xabc", nil
	}

	batch := filepath.Join(env.home, "payees.csv")
	require.NoError(t, os.WriteFile(batch, []byte("address,amount\n"+testPayeeA+",10\n"+testPayeeB+",20\n"), 0o600))

	out, err := env.run("-o", "json", "pay", "--batch", batch, "--yes")
	require.Error(t, err)
	require.ErrorIs(t, err, wiserr.ErrUserRejected)

	res := decodePayResult(t, out)
	assert.Equal(t, "stopped", res.State)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Confirmed)
	assert.Equal(t, []string{"0xabc"}, res.TxHashes)
	assert.Equal(t, "User rejected the request.", res.Error)
	assert.Len(t, env.wallet.Sent(), 2)
	assert.False(t, env.wallet.Overlapped())
}

func TestPay_RequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "1")
	require.ErrorIs(t, err, errNotConfirmed)
	assert.Empty(t, env.wallet.Sent())

	promptConfirmFn = func(string) bool { return true }
	_, err = env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "1")
	require.NoError(t, err)
	assert.Len(t, env.wallet.Sent(), 1)
}

func TestPay_ValidatesBeforeSending(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad address", []string{"--to", "0x123", "--amount", "1"}, wiserr.ErrInvalidAddress},
		{"zero amount", []string{"--to", testPayeeA, "--amount", "0"}, wiserr.ErrNonPositiveAmount},
		{"too many decimals", []string{"--to", testPayeeA, "--amount", "0.0000001"}, wiserr.ErrAmountPrecision},
		{"unknown token", []string{"--to", testPayeeA, "--amount", "1", "--token", "DAI"}, wiserr.ErrTokenNotAllowed},
		{"no source", nil, wiserr.ErrNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			args := append([]string{"-o", "json", "pay", "--yes"}, tt.args...)
			_, err := env.run(args...)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, env.wallet.Sent())
		})
	}
}

func TestPay_WrongNetwork(t *testing.T) {
	env := newTestEnv(t)
	env.wallet = mock.New(testAccount, "0x1").Authorize()

	_, err := env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "1", "--yes")
	require.ErrorIs(t, err, wiserr.ErrWrongNetwork)
	assert.Empty(t, env.wallet.Sent())
}

func TestPay_NotConnected(t *testing.T) {
	env := newTestEnv(t)
	env.wallet = mock.New(testAccount, sepoliaChain)

	_, err := env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "1", "--yes")
	require.ErrorIs(t, err, wiserr.ErrNotConnected)
}

func TestPay_TasksAreMarkedPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Save(ctx, store.Task{
		ID: "7", Title: "Fix login", Status: store.TaskDone,
		Reward: "USDT", RewardAmount: "12.5", AssigneeAddress: testPayeeA,
	}))
	require.NoError(t, env.store.Save(ctx, store.Task{
		ID: "8", Title: "Write docs", Status: "in_progress",
		Reward: "USDT", RewardAmount: "3", AssigneeAddress: testPayeeB,
	}))

	out, err := env.run("-o", "json", "pay", "--payable", "--yes")
	require.NoError(t, err)

	res := decodePayResult(t, out)
	assert.Equal(t, "USDT", res.Token)
	assert.Equal(t, 1, res.Confirmed)

	task, err := env.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.True(t, task.Paid)
	assert.Equal(t, res.TxHashes[0], task.PaidTxHash)

	_, err = env.run("-o", "json", "pay", "--task", "8", "--yes")
	require.ErrorIs(t, err, wiserr.ErrTaskNotPayable)
}

func TestAcquireRunLock(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested")

	unlock, err := acquireRunLock(context.Background(), home, time.Second)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, runLockFile))

	require.NoError(t, unlock())
	assert.NoFileExists(t, filepath.Join(home, runLockFile))

	// Released locks can be taken again.
	unlock, err = acquireRunLock(context.Background(), home, time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestPay_WritesReportFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.home, "out.json")

	_, err := env.run("-o", "json", "pay", "--to", testPayeeA, "--amount", "2", "--yes", "--report", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 1, rep.Confirmed)
}
