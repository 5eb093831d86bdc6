package exec

// Command is one parsed input line.
type Command struct {
	CmdArgs []string
	// InFile and OutFile are nil when the stream is inherited from the shell.
	// A non-nil empty path is kept as is so that opening it fails in the child.
	InFile, OutFile *string
	Background      bool
}

// Name is the program to run, or empty for an empty command.
func (cmd *Command) Name() string {
	if len(cmd.CmdArgs) == 0 {
		return ""
	}
	return cmd.CmdArgs[0]
}
