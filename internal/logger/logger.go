package logger

import (
	"github.com/google/uuid"
	"io"
	"log"
)

var std = log.New(io.Discard, "", log.LstdFlags|log.Lmicroseconds)

// Enable sends log output to w, tagged with a fresh session identifier which
// is also returned.
func Enable(w io.Writer) string {
	session := uuid.NewString()
	std.SetOutput(w)
	std.SetPrefix("smallsh[" + session[:8] + "] ")
	return session
}

// Disable discards all further log output.
func Disable() {
	std.SetOutput(io.Discard)
	std.SetPrefix("")
}

func Printf(format string, v ...any) {
	std.Printf(format, v...)
}

func Println(v ...any) {
	std.Println(v...)
}
