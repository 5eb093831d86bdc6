// Package signals holds the foreground-only mode switch driven by SIGTSTP and
// keeps SIGINT from ending the shell.
//
// The handler goroutine flips one atomic flag and performs one raw write of a
// prebuilt notice. It touches no other state.
package signals

import (
	"golang.org/x/sys/unix"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

const (
	Toggle    = syscall.SIGTSTP
	Interrupt = syscall.SIGINT
)

var (
	enterNotice = []byte("\nEntering foreground-only mode (& is now ignored)\n")
	exitNotice  = []byte("\nExiting foreground-only mode\n")
)

// Controller is the Normal / ForegroundOnly state machine.
type Controller struct {
	foregroundOnly atomic.Bool
	fd             int
}

// NewController returns a controller in Normal mode that writes its notices
// to the file descriptor fd.
func NewController(fd int) *Controller {
	return &Controller{fd: fd}
}

func (c *Controller) ForegroundOnly() bool {
	return c.foregroundOnly.Load()
}

// Flip switches mode and announces the new one.
func (c *Controller) Flip() {
	for {
		old := c.foregroundOnly.Load()
		if c.foregroundOnly.CompareAndSwap(old, !old) {
			if old {
				_, _ = unix.Write(c.fd, exitNotice)
			} else {
				_, _ = unix.Write(c.fd, enterNotice)
			}
			return
		}
	}
}

// Install routes Toggle deliveries to c.Flip and swallows Interrupt. Catching
// Interrupt rather than ignoring it leaves the disposition a child inherits
// across exec at its default. The returned function undoes the installation.
func Install(c *Controller) (stop func()) {
	sigs := make(chan os.Signal, 4)
	done := make(chan struct{})
	signal.Notify(sigs, Toggle, Interrupt)

	go func() {
		for {
			select {
			case sig := <-sigs:
				if sig == Toggle {
					c.Flip()
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
