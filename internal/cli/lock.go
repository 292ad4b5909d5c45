package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/filelock"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// runLockFile guards against two payout runs from the same home at once.
const runLockFile = "payout.lock"

// acquireRunLock takes the payout lock under home, waiting at most timeout.
// The returned func releases it.
func acquireRunLock(ctx context.Context, home string, timeout time.Duration) (func() error, error) {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(home, runLockFile)

	type result struct {
		f   io.Closer
		err error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := filelock.NewLocker(path).Open()
		ch <- result{f: f, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return func() error {
			err := r.f.Close()
			_ = os.Remove(path)
			return err
		}, nil
	case <-ctx.Done():
		// Release the lock if the waiter acquires it after we gave up.
		go func() {
			if r := <-ch; r.err == nil {
				_ = r.f.Close()
			}
		}()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, wiserr.WithDetails(wiserr.ErrRunLocked, map[string]string{"lock": path})
		}
		return nil, ctx.Err()
	}
}
