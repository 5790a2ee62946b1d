package main

import (
	"os"
	"time"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	gf, rest := parseGlobalFlags(argv)
	if len(rest) == 0 {
		usage()
		return 1
	}
	cmd := rest[0]
	args := rest[1:]

	switch cmd {
	case "help", "-h", "--help":
		usage()
		return 0
	case "version", "--version":
		printVersion()
		return 0
	case "completions":
		cmdCompletions(args)
		return 0
	}

	rc, err := newRunContext(gf)
	if err != nil {
		return reportError(gf.Verbosity, err)
	}

	handler, ok := getRootCommandHandlers()[cmd]
	if !ok {
		printUnknown("", cmd)
		usage()
		return 1
	}
	start := time.Now()
	err = handler(rc, args)
	logCommand(gf.Verbosity, cmd, nil, start, err)
	if err != nil {
		return reportError(gf.Verbosity, err)
	}
	return 0
}
