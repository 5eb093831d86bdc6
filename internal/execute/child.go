package exec

import (
	"encoding/json"
	"errors"
	"fmt"
	"golang.org/x/sys/unix"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

const childEnv = "SMALLSH_CHILD_PLAN"

// childPlan is what the shell hands to the child stage.
type childPlan struct {
	Args       []string `json:"args"`
	InFile     *string  `json:"in_file,omitempty"`
	OutFile    *string  `json:"out_file,omitempty"`
	Background bool     `json:"background"`
	NullDevice string   `json:"null_device"`
}

// IsChildStage reports whether this process was started by ForkAndExec to
// set up a child. main (and TestMain in packages that spawn children) must
// check it before doing anything else.
//
// SMALLSH_CHILD_PLAN only counts when it holds a plan naming a program; an
// empty or garbled value left in the environment starts a normal session.
func IsChildStage() bool {
	_, ok := loadPlan()
	return ok
}

// RunChildStage prepares signals and standard streams, then execs the
// program. It only returns control by exiting with status 1.
func RunChildStage() {
	os.Exit(runChild(os.Stdout))
}

func loadPlan() (childPlan, bool) {
	var plan childPlan
	raw := os.Getenv(childEnv)
	if raw == "" || json.Unmarshal([]byte(raw), &plan) != nil || len(plan.Args) == 0 {
		return childPlan{}, false
	}
	return plan, true
}

func runChild(out io.Writer) int {
	plan, ok := loadPlan()
	_ = os.Unsetenv(childEnv)
	if !ok {
		fmt.Fprintln(out, "smallsh: malformed child plan")
		return 1
	}

	// Only the shell reacts to SIGTSTP. SIGINT keeps its default (restored
	// by exec) unless the child runs in the background.
	signal.Ignore(syscall.SIGTSTP)
	if plan.Background {
		signal.Ignore(syscall.SIGINT)
	}

	if plan.Background && plan.OutFile == nil {
		if err := redirect(plan.NullDevice, unix.O_WRONLY, 1); err != nil {
			fmt.Fprintf(out, "cannot open %s for output\n", plan.NullDevice)
			return 1
		}
	}

	if plan.OutFile != nil {
		if err := redirect(*plan.OutFile, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 1); err != nil {
			fmt.Fprintf(out, "cannot open %s for output\n", *plan.OutFile)
			return 1
		}
	}

	if plan.InFile != nil {
		if err := redirect(*plan.InFile, unix.O_RDONLY, 0); err != nil {
			fmt.Fprintf(out, "cannot open %s for input\n", *plan.InFile)
			return 1
		}
	}

	if path, err := exec.LookPath(plan.Args[0]); err == nil || errors.Is(err, exec.ErrDot) {
		_ = syscall.Exec(path, plan.Args, os.Environ())
	}

	fmt.Fprintf(out, "%s: no such file or directory\n", plan.Args[0])
	return 1
}

// redirect opens path and installs it as descriptor fd.
func redirect(path string, flags int, fd int) error {
	src, err := unix.Open(path, flags|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return err
	}
	if src == fd {
		_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, 0)
		return err
	}
	defer unix.Close(src)

	return unix.Dup2(src, fd)
}
