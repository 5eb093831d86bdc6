package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"smallsh/internal/execute"
	"smallsh/internal/parser"
	"smallsh/internal/prompt"
)

// Loop prompts for, parses and runs one line at a time until the exit
// built-in or the end of input. $$ expands to pid.
func Loop(r *bufio.Reader, s *exec.Session, p *prompt.Prompt, pid int) error {
	for {
		p.Out(s.Out)

		line, err := parser.Read(r)
		if err != nil {
			_ = s.Exit()
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.Out, "\nexit")
				return nil
			}
			return err
		}

		cmd, ok := parser.Parse(line, pid, s.Mode)
		if !ok {
			continue
		}

		if err := cmd.ForkAndExec(s); err != nil {
			if errors.Is(err, exec.ErrExit) {
				return nil
			}
			return err
		}
	}
}
