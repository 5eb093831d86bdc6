package parser

import (
	"bufio"
	"errors"
	"io"
	"smallsh/internal/execute"
	"smallsh/internal/slice"
	"strconv"
	"strings"
	"syscall"
)

const (
	PidMarker        = "$$"
	CommentMarker    = "#"
	InputMarker      = "<"
	OutputMarker     = ">"
	BackgroundMarker = "&"
)

// Read returns the next line including its newline. A read interrupted by a
// signal is resumed instead of being taken for the end of input. A final
// line without a newline is returned as is; after it Read returns io.EOF.
func Read(r *bufio.Reader) (string, error) {
	var line strings.Builder

	for {
		part, err := r.ReadString('\n')
		line.WriteString(part)

		switch {
		case errors.Is(err, syscall.EINTR):
			continue
		case errors.Is(err, io.EOF) && line.Len() > 0:
			return line.String(), nil
		case err != nil:
			return "", err
		}

		return line.String(), nil
	}
}

// Expand replaces every $$ in line with pid, left to right, without looking
// at the inserted digits again.
func Expand(line string, pid int) string {
	return strings.ReplaceAll(line, PidMarker, strconv.Itoa(pid))
}

// Tokenize splits line on runs of spaces. Tabs and quotes are ordinary
// characters.
func Tokenize(line string) []string {
	var res []string

	for i := slice.TrimSpaces(line, 0); i < len(line); i = slice.TrimSpaces(line, i) {
		end := slice.NextSpace(line, i)
		res = append(res, line[i:end])
		i = end
	}

	return res
}

func isComment(s string) bool {
	return strings.HasPrefix(s, CommentMarker)
}

// Parse turns one raw input line into a command. ok is false for blank
// lines, comments and lines that leave no program to run.
//
// Format: command [arg...] [< input_file] [> output_file] [&]
func Parse(line string, pid int, mode exec.Mode) (cmd exec.Command, ok bool) {
	line = strings.TrimSuffix(line, "\n")
	if line == "" || isComment(line) {
		return exec.Command{}, false
	}

	tokens := Tokenize(Expand(line, pid))
	if len(tokens) == 0 || isComment(tokens[0]) {
		return exec.Command{}, false
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case InputMarker, OutputMarker:
			marker := tokens[i]

			var path string
			if i+1 < len(tokens) {
				i++
				path = tokens[i]
			}

			if marker == InputMarker {
				cmd.InFile = &path
			} else {
				cmd.OutFile = &path
			}
		default:
			cmd.CmdArgs = append(cmd.CmdArgs, tokens[i])
		}
	}

	if last, found := slice.Last(cmd.CmdArgs); found && last == BackgroundMarker {
		cmd.CmdArgs = slice.Remove(cmd.CmdArgs, len(cmd.CmdArgs)-1, len(cmd.CmdArgs))
		cmd.Background = !mode.ForegroundOnly()
	}

	if len(cmd.CmdArgs) == 0 {
		return exec.Command{}, false
	}

	return cmd, true
}
