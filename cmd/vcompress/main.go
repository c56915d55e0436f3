// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command vcompress re-encodes video files to a smaller target.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/vcompress/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return exitUsage
	}
	switch args[0] {
	case "-version", "--version", "version":
		fmt.Println(version.String())
		return exitOK
	case "-h", "--help", "help":
		printUsage(os.Stdout)
		return exitOK
	case "compress":
		return runCompress(args[1:])
	case "batch":
		return runBatch(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "config":
		return runConfigCLI(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(os.Stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vcompress compress [-config f.yaml] [-o dir] [-resolution 720p|WxH] [-bitrate bps] [-container mp4] <input>")
	fmt.Fprintln(w, "  vcompress batch [-config f.yaml] [-jobs N] [-report path] [overrides] <inputs...>")
	fmt.Fprintln(w, "  vcompress watch [-config f.yaml] [overrides] <dir>")
	fmt.Fprintln(w, "  vcompress config validate|dump [-f config.yaml]")
	fmt.Fprintln(w, "  vcompress -version")
}
