package main

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"regexp"
	"smallsh/internal/execute"
	"smallsh/internal/jobs"
	"smallsh/internal/prompt"
	"smallsh/internal/signals"
	"strconv"
	"strings"
	"testing"
)

const testPid = 4242

func TestMain(m *testing.M) {
	if exec.IsChildStage() {
		exec.RunChildStage()
	}
	os.Exit(m.Run())
}

var scripts = map[string]string{
	"fail.sh":  "exit 1",
	"die.sh":   "kill -9 $$",
	"hello.sh": "echo hello",
	"args.sh":  `for a in "$@"; do echo "[$a]"; done`,
}

type transcript struct {
	out        string
	childOut   string
	dir        string
	controller *signals.Controller
}

// runTranscript feeds input to a fresh session run from a scratch directory
// holding the test scripts.
func runTranscript(t *testing.T, input string, foregroundOnly bool) transcript {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = devNull.Close() })

	controller := signals.NewController(int(devNull.Fd()))
	if foregroundOnly {
		controller.Flip()
	}

	childOut, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = childOut.Close() })

	s, err := exec.NewSession(controller)
	require.NoError(t, err)
	var out bytes.Buffer
	s.Out = &out
	s.Stdout = childOut

	require.NoError(t, Loop(bufio.NewReader(strings.NewReader(input)), s, prompt.New(prompt.Default, false), testPid))

	child, err := os.ReadFile(childOut.Name())
	require.NoError(t, err)

	return transcript{out: out.String(), childOut: string(child), dir: dir, controller: controller}
}

func TestTranscripts(t *testing.T) {
	// Each case runs from its own scratch directory.
	fixtures, err := filepath.Abs(filepath.Join("testdata", "golden"))
	require.NoError(t, err)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(fixtures),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]struct {
		input          string
		foregroundOnly bool
	}{
		"status":          {input: "status\n./fail.sh\nstatus\n./die.sh\nstatus\n"},
		"comments":        {input: "# comment\n\n   \n#\n  # indented\nstatus\n"},
		"exit":            {input: "status\nexit\nstatus\n"},
		"missing-program": {input: "smallsh-no-such-program\nstatus\n"},
		"redirect":        {input: "./hello.sh > out.txt\ncat < out.txt > copy.txt\nstatus\n"},
		"foreground-only": {input: "./hello.sh &\nstatus\n", foregroundOnly: true},
		"cd-failure":      {input: "./fail.sh\ncd smallsh-missing-dir\nstatus\n"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tr := runTranscript(t, tc.input, tc.foregroundOnly)
			g.Assert(t, name, []byte(tr.out))
		})
	}
}

func TestTranscriptChildOutput(t *testing.T) {
	cases := map[string]struct {
		input          string
		foregroundOnly bool
		expected       string
	}{
		"expansion": {
			input:    "./args.sh $$ x$$y $$$\n",
			expected: fmt.Sprintf("[%d]\n[x%dy]\n[%d$]\n", testPid, testPid, testPid),
		},
		"missing-program": {
			input:    "smallsh-no-such-program\n",
			expected: "smallsh-no-such-program: no such file or directory\n",
		},
		"foreground-only": {
			input:          "./hello.sh &\n",
			foregroundOnly: true,
			expected:       "hello\n",
		},
		"missing-input": {
			input:    "./hello.sh < nope.txt\n",
			expected: "cannot open nope.txt for input\n",
		},
		"dangling-input": {
			input:    "./hello.sh <\n",
			expected: "cannot open  for input\n",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tr := runTranscript(t, tc.input, tc.foregroundOnly)
			assert.Equal(t, tc.expected, tr.childOut)
		})
	}
}

func TestTranscriptRedirectFiles(t *testing.T) {
	tr := runTranscript(t, "./hello.sh > out.txt\ncat < out.txt > copy.txt\n", false)

	got, err := os.ReadFile(filepath.Join(tr.dir, "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
	assert.Empty(t, tr.childOut)
}

func TestTranscriptChangeDirectory(t *testing.T) {
	tr := runTranscript(t, "cd sub\n", false)
	assert.Equal(t, ": cd: chdir sub: no such file or directory\n: \nexit\n", tr.out)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	runTranscript(t, "cd\n", false)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, dir, wd)
}

var backgroundPid = regexp.MustCompile(`background pid is (\d+)\n`)

func TestTranscriptBackgroundExit(t *testing.T) {
	tr := runTranscript(t, "sleep 30 &\nsleep 30 &\nexit\n", false)

	matches := backgroundPid.FindAllStringSubmatch(tr.out, -1)
	require.Len(t, matches, 2, tr.out)
	assert.Equal(t, fmt.Sprintf(": background pid is %s\n: background pid is %s\n: ", matches[0][1], matches[1][1]), tr.out)

	for _, m := range matches {
		pid, err := strconv.Atoi(m[1])
		require.NoError(t, err)

		st, err := jobs.WaitForForeground(pid)
		require.NoError(t, err)
		assert.Equal(t, jobs.Killed(9), st, "pid %d", pid)
	}
}

func TestTranscriptBackgroundDone(t *testing.T) {
	tr := runTranscript(t, "./fail.sh &\nsleep 0.3\n", false)

	matches := backgroundPid.FindStringSubmatch(tr.out)
	require.Len(t, matches, 2, tr.out)
	assert.Contains(t, tr.out, fmt.Sprintf("background pid %s is done: exit value 1\n", matches[1]))
	assert.Empty(t, tr.childOut)
}

func TestTranscriptEndOfInputKillsBackground(t *testing.T) {
	tr := runTranscript(t, "sleep 30 &\n", false)

	matches := backgroundPid.FindStringSubmatch(tr.out)
	require.Len(t, matches, 2, tr.out)
	assert.True(t, strings.HasSuffix(tr.out, ": \nexit\n"), tr.out)

	pid, err := strconv.Atoi(matches[1])
	require.NoError(t, err)
	st, err := jobs.WaitForForeground(pid)
	require.NoError(t, err)
	assert.Equal(t, jobs.Killed(9), st)
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd()

	var out bytes.Buffer
	root.SetIn(strings.NewReader("status\nexit\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"--prompt", "> "})

	require.NoError(t, root.Execute())
	assert.Equal(t, "> exit value 0\n> ", out.String())
}

func TestRootCmdLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shell.log")
	root := NewRootCmd()

	var out bytes.Buffer
	root.SetIn(strings.NewReader("exit\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"--log-file", logPath})

	require.NoError(t, root.Execute())

	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "session ")
	assert.Contains(t, string(got), "started")
}

func TestRootCmdBadConfig(t *testing.T) {
	root := NewRootCmd()
	root.SetIn(strings.NewReader(""))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})

	assert.Error(t, root.Execute())
}

func TestRootCmdRejectsArgs(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"extra"})

	assert.Error(t, root.Execute())
}
