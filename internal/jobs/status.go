package jobs

import (
	"fmt"
	"golang.org/x/sys/unix"
)

// Status is how a waited-for process ended: either it exited with Code, or
// it was killed by signal Code.
type Status struct {
	Signaled bool
	Code     int
}

func Exited(code int) Status {
	return Status{Code: code}
}

func Killed(sig int) Status {
	return Status{Signaled: true, Code: sig}
}

func FromWaitStatus(ws unix.WaitStatus) Status {
	if ws.Signaled() {
		return Killed(int(ws.Signal()))
	}
	return Exited(ws.ExitStatus())
}

func (s Status) String() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", s.Code)
	}
	return fmt.Sprintf("exit value %d", s.Code)
}
