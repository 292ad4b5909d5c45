package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errRPC = errors.New("rpc failed")

func TestRecordRPCCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall(10*time.Millisecond, nil)
	m.RecordRPCCall(30*time.Millisecond, errRPC)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RPCCallsTotal)
	assert.Equal(t, int64(1), snap.RPCErrorsTotal)
	assert.InDelta(t, 20.0, m.RPCLatencyAvgMs(), 0.001)
}

func TestRunAndTransferCounters(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRunStarted()
	m.RecordTransferSubmitted()
	m.RecordTransferResult(nil)
	m.RecordTransferSubmitted()
	m.RecordTransferResult(errRPC)
	m.RecordRunFinished(false)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.RunsStarted)
	assert.Equal(t, int64(0), snap.RunsCompleted)
	assert.Equal(t, int64(1), snap.RunsStopped)
	assert.Equal(t, int64(2), snap.TransfersSubmitted)
	assert.Equal(t, int64(1), snap.TransfersConfirmed)
	assert.Equal(t, int64(1), snap.TransfersFailed)

	m.Reset()
	assert.Equal(t, Snapshot{}, m.Snapshot())
	assert.InDelta(t, 0.0, m.RPCLatencyAvgMs(), 0)
}

func TestConcurrentRecording(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRPCCall(time.Millisecond, nil)
			m.RecordTransferSubmitted()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Snapshot().RPCCallsTotal)
	assert.Equal(t, int64(50), m.Snapshot().TransfersSubmitted)
}
