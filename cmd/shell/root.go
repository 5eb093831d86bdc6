package main

import (
	"bufio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"os"
	"smallsh/internal/config"
	"smallsh/internal/execute"
	"smallsh/internal/logger"
	"smallsh/internal/prompt"
	"smallsh/internal/signals"
)

type options struct {
	configPath string
	prompt     string
	color      bool
	logFile    string
}

func NewRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "shell",
		Short:         "A small interactive command interpreter",
		Long:          "Runs commands read one line at a time. Built-ins: cd, status, exit.\nA trailing & runs a command in the background; SIGTSTP toggles foreground-only mode.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file, or directory holding config.yaml")
	flags.StringVar(&opts.prompt, "prompt", prompt.Default, `prompt text; \u, \h, \w and \$ are expanded`)
	flags.BoolVar(&opts.color, "color", false, "color the prompt")
	flags.StringVar(&opts.logFile, "log-file", "", "append debug logs to this file")

	return root
}

func loadConfig(cmd *cobra.Command, fsys afero.Fs, opts options) (*config.Configuration, error) {
	cfg, err := config.Load(fsys, opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") {
		cfg.Prompt = opts.prompt
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}

	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, opts options) error {
	fsys := afero.NewOsFs()

	cfg, err := loadConfig(cmd, fsys, opts)
	if err != nil {
		return err
	}

	logFile, err := cfg.OpenLog(fsys)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
		defer logger.Disable()
		session := logger.Enable(logFile)
		logger.Printf("session %s started, pid %d", session, unix.Getpid())
	}

	controller := signals.NewController(int(os.Stdout.Fd()))
	stop := signals.Install(controller)
	defer stop()

	sess, err := exec.NewSession(controller)
	if err != nil {
		return err
	}
	sess.Out = cmd.OutOrStdout()
	sess.NullDevice = cfg.NullDevice

	return Loop(bufio.NewReader(cmd.InOrStdin()), sess, prompt.New(cfg.Prompt, cfg.Color), unix.Getpid())
}
