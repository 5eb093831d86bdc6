package main

import (
	"fmt"
	"os"
	"smallsh/internal/execute"
)

func main() {
	if exec.IsChildStage() {
		exec.RunChildStage()
	}

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
