package prompt

import (
	"fmt"
	"github.com/fatih/color"
	"io"
	"os"
	"os/user"
	"strings"
)

const Default = ": "

// Prompt renders the text shown before each input line. Template may use
// \u (user), \h (host), \w (working directory, ~ for $HOME) and \$.
type Prompt struct {
	Template string
	Color    *color.Color
}

func New(template string, colored bool) *Prompt {
	p := &Prompt{Template: template}
	if colored {
		p.Color = color.New(color.FgCyan, color.Bold)
	}
	return p
}

func (p *Prompt) Out(w io.Writer) {
	text := Render(p.Template)
	if p.Color != nil {
		_, _ = p.Color.Fprint(w, text)
		return
	}
	fmt.Fprint(w, text)
}

func Render(template string) string {
	if !strings.Contains(template, `\`) {
		return template
	}

	userName, hostName, cwd := "username", "hostname", "~"
	homeDir, ok := os.LookupEnv("HOME")

	if curUser, err := user.Current(); err == nil {
		userName = curUser.Username
	}

	if curHostName, err := os.Hostname(); err == nil {
		hostName = curHostName
	}

	if curCwd, err := os.Getwd(); err == nil {
		cwd = curCwd
		if ok && homeDir != "" && strings.HasPrefix(curCwd, homeDir) {
			cwd = strings.Replace(curCwd, homeDir, "~", 1)
		}
	}

	sign := "$"
	if os.Geteuid() == 0 {
		sign = "#"
	}

	return strings.NewReplacer(
		`\u`, userName,
		`\h`, hostName,
		`\w`, cwd,
		`\$`, sign,
	).Replace(template)
}
