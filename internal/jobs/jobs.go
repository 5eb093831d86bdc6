package jobs

import (
	"errors"
	"fmt"
	"golang.org/x/sys/unix"
	"io"
	"maps"
	"slices"
	"smallsh/internal/logger"
	"sync"
)

// MaxJobs is the number of background processes a session tracks at once.
const MaxJobs = 512

var ErrTableFull = errors.New("too many background processes")

// Table holds the pids of background processes started by this session that
// have not been reported as done yet.
type Table struct {
	pids      map[int]struct{}
	jobsMutex sync.Mutex
}

func NewTable() *Table {
	return &Table{pids: make(map[int]struct{})}
}

func (t *Table) Add(pid int) error {
	t.jobsMutex.Lock()
	defer t.jobsMutex.Unlock()

	if _, ok := t.pids[pid]; ok {
		return nil
	}
	if len(t.pids) >= MaxJobs {
		return ErrTableFull
	}

	t.pids[pid] = struct{}{}
	return nil
}

// Remove reports whether pid was tracked.
func (t *Table) Remove(pid int) bool {
	t.jobsMutex.Lock()
	defer t.jobsMutex.Unlock()

	_, ok := t.pids[pid]
	delete(t.pids, pid)
	return ok
}

func (t *Table) Contains(pid int) bool {
	t.jobsMutex.Lock()
	defer t.jobsMutex.Unlock()

	_, ok := t.pids[pid]
	return ok
}

func (t *Table) Len() int {
	t.jobsMutex.Lock()
	defer t.jobsMutex.Unlock()

	return len(t.pids)
}

func (t *Table) Full() bool {
	return t.Len() >= MaxJobs
}

// Pids returns the tracked pids in ascending order.
func (t *Table) Pids() []int {
	t.jobsMutex.Lock()
	defer t.jobsMutex.Unlock()

	return slices.Sorted(maps.Keys(t.pids))
}

// KillAll sends sig to every tracked pid and empties the table. A failed kill
// does not stop the broadcast; all failures are returned joined.
func (t *Table) KillAll(sig unix.Signal) error {
	var errs []error

	for _, pid := range t.Pids() {
		logger.Printf("killing background pid %d with %v", pid, sig)
		if err := unix.Kill(pid, sig); err != nil {
			errs = append(errs, fmt.Errorf("kill %d: %w", pid, err))
		}
		t.Remove(pid)
	}

	return errors.Join(errs...)
}

// WriteDone reports a finished background process in the sweep format.
func WriteDone(w io.Writer, pid int, st Status) {
	fmt.Fprintf(w, "background pid %d is done: %s\n", pid, st)
}

// WriteDoneJobs reaps every child that has already finished, reports each one
// and drops it from the table. It never blocks.
func (t *Table) WriteDoneJobs(w io.Writer) {
	for {
		pid, st, err := reapAny()
		if err != nil || pid <= 0 {
			return
		}

		t.Remove(pid)
		logger.Printf("reaped background pid %d: %s", pid, st)
		WriteDone(w, pid, st)
	}
}

// WaitForForeground blocks until pid terminates.
func WaitForForeground(pid int) (Status, error) {
	var ws unix.WaitStatus

	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return Status{}, err
		case ws.Exited() || ws.Signaled():
			return FromWaitStatus(ws), nil
		}
	}
}

// WaitForBackground checks pid without blocking. done is false while the
// process is still running.
func WaitForBackground(pid int) (st Status, done bool, err error) {
	var ws unix.WaitStatus

	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return Status{}, false, err
		case wpid == 0:
			return Status{}, false, nil
		case ws.Exited() || ws.Signaled():
			return FromWaitStatus(ws), true, nil
		default:
			return Status{}, false, nil
		}
	}
}

func reapAny() (int, Status, error) {
	var ws unix.WaitStatus

	for {
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return 0, Status{}, err
		case pid <= 0:
			return 0, Status{}, nil
		}

		if ws.Exited() || ws.Signaled() {
			return pid, FromWaitStatus(ws), nil
		}
	}
}
