package exec

import (
	"encoding/json"
	"fmt"
	"os"
	"smallsh/internal/jobs"
	"smallsh/internal/logger"
	"syscall"
)

// ForkAndExec runs cmd to completion, or starts it in the background. Only
// the exit built-in returns an error (ErrExit); every other failure is
// reported on s.Out and the session carries on.
func (cmd *Command) ForkAndExec(s *Session) error {
	if cmd.Name() == "" {
		return nil
	}

	if run, ok := builtins[cmd.Name()]; ok {
		return run(cmd, s)
	}

	if cmd.Background && s.Jobs.Full() {
		fmt.Fprintf(s.Out, "%s: %v\n", cmd.Name(), jobs.ErrTableFull)
		return nil
	}

	pid, err := cmd.spawn(s)
	if err != nil {
		fmt.Fprintf(s.Out, "fork() failed!: %v\n", err)
		return nil
	}
	logger.Printf("spawned pid %d background=%t argv=%q", pid, cmd.Background, cmd.CmdArgs)

	if cmd.Background {
		if err := s.Jobs.Add(pid); err != nil {
			logger.Printf("tracking pid %d: %v", pid, err)
		}
		fmt.Fprintf(s.Out, "background pid is %d\n", pid)

		st, done, err := jobs.WaitForBackground(pid)
		switch {
		case err != nil:
			logger.Printf("polling pid %d: %v", pid, err)
		case done:
			s.Jobs.Remove(pid)
			jobs.WriteDone(s.Out, pid, st)
		}
	} else {
		st, err := jobs.WaitForForeground(pid)
		if err != nil {
			fmt.Fprintf(s.Out, "wait %d: %v\n", pid, err)
		} else {
			logger.Printf("foreground pid %d: %s", pid, st)
			s.LastStatus = st
			if st.Signaled {
				fmt.Fprintln(s.Out, st)
			}
		}
	}

	if !s.Mode.ForegroundOnly() {
		s.Jobs.WriteDoneJobs(s.Out)
	}

	return nil
}

// spawn starts s.Self in child-stage mode; the child stage applies the
// redirections and then replaces itself with the program, keeping its pid.
func (cmd *Command) spawn(s *Session) (int, error) {
	plan, err := json.Marshal(childPlan{
		Args:       cmd.CmdArgs,
		InFile:     cmd.InFile,
		OutFile:    cmd.OutFile,
		Background: cmd.Background,
		NullDevice: s.NullDevice,
	})
	if err != nil {
		return 0, err
	}

	return syscall.ForkExec(s.Self, []string{cmd.CmdArgs[0]}, &syscall.ProcAttr{
		Env:   append(os.Environ(), childEnv+"="+string(plan)),
		Files: []uintptr{s.Stdin.Fd(), s.Stdout.Fd(), s.Stderr.Fd()},
	})
}
