package exec

import (
	"fmt"
	"os"
)

var builtins = map[string]func(cmd *Command, s *Session) error{
	"cd":     changeDirectory,
	"status": writeStatus,
	"exit":   exitShell,
}

// changeDirectory goes to the first argument, or to $HOME without one.
// Failing leaves LastStatus alone.
func changeDirectory(cmd *Command, s *Session) error {
	dir := os.Getenv("HOME")
	if len(cmd.CmdArgs) > 1 {
		dir = cmd.CmdArgs[1]
	}

	if err := os.Chdir(dir); err != nil {
		fmt.Fprintln(s.Out, "cd:", err)
	}
	return nil
}

func writeStatus(_ *Command, s *Session) error {
	fmt.Fprintln(s.Out, s.LastStatus)
	return nil
}

func exitShell(_ *Command, s *Session) error {
	return s.Exit()
}
