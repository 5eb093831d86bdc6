package exec

import (
	"errors"
	"golang.org/x/sys/unix"
	"io"
	"os"
	"smallsh/internal/jobs"
	"smallsh/internal/logger"
)

// ErrExit is returned once the session has been ended by the exit built-in.
var ErrExit = errors.New("exit")

const DefaultNullDevice = "/dev/null"

// Mode tells whether a trailing & is currently honored.
type Mode interface {
	ForegroundOnly() bool
}

// Session is the state shared by every command of one shell session.
type Session struct {
	Mode Mode
	Jobs *jobs.Table
	// LastStatus is how the most recent foreground command ended.
	LastStatus jobs.Status

	// Out receives the shell's own messages. Children get Stdin, Stdout and
	// Stderr as their standard streams.
	Out                   io.Writer
	Stdin, Stdout, Stderr *os.File

	NullDevice string
	// Self is the executable re-run to set up each child before exec.
	Self string
}

func NewSession(mode Mode) (*Session, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}

	return &Session{
		Mode:       mode,
		Jobs:       jobs.NewTable(),
		Out:        os.Stdout,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		NullDevice: DefaultNullDevice,
		Self:       self,
	}, nil
}

// Exit kills every background process still tracked. The caller is expected
// to end the process afterwards.
func (s *Session) Exit() error {
	if err := s.Jobs.KillAll(unix.SIGKILL); err != nil {
		logger.Printf("exit: %v", err)
	}
	return ErrExit
}
