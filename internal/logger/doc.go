// Package logger is the debug log shared by the shell's internal packages.
//
// It discards everything until Enable is called, so operator-facing output is
// never mixed with diagnostics unless a log file was requested.
package logger
