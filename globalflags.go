package main

import (
	"strings"

	"redisctl/internal/output"
)

// globalFlags holds the flags common to every subcommand, named in the
// spec's external-interfaces section: --profile, --config-file, -o/--output,
// -q/--query, -v/-vv/-vvv.
type globalFlags struct {
	Profile    string
	ConfigFile string
	Output     output.Format
	Query      string
	Verbosity  int
}

// parseGlobalFlags extracts the global flags from argv wherever they appear
// and returns the remaining positional/subcommand tokens. This lets --help
// and --profile work regardless of where the user places them, while config
// loading happens only after parsing (so --help never requires a config
// file).
func parseGlobalFlags(argv []string) (globalFlags, []string) {
	g := globalFlags{Output: output.Auto}
	rest := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--profile" && i+1 < len(argv):
			g.Profile = argv[i+1]
			i++
		case strings.HasPrefix(a, "--profile="):
			g.Profile = strings.TrimPrefix(a, "--profile=")
		case a == "--config-file" && i+1 < len(argv):
			g.ConfigFile = argv[i+1]
			i++
		case strings.HasPrefix(a, "--config-file="):
			g.ConfigFile = strings.TrimPrefix(a, "--config-file=")
		case (a == "-o" || a == "--output") && i+1 < len(argv):
			if f, err := output.ParseFormat(argv[i+1]); err == nil {
				g.Output = f
			}
			i++
		case strings.HasPrefix(a, "--output="):
			if f, err := output.ParseFormat(strings.TrimPrefix(a, "--output=")); err == nil {
				g.Output = f
			}
		case (a == "-q" || a == "--query") && i+1 < len(argv):
			g.Query = argv[i+1]
			i++
		case strings.HasPrefix(a, "--query="):
			g.Query = strings.TrimPrefix(a, "--query=")
		case a == "-v":
			g.Verbosity = max(g.Verbosity, 1)
		case a == "-vv":
			g.Verbosity = max(g.Verbosity, 2)
		case a == "-vvv":
			g.Verbosity = max(g.Verbosity, 3)
		case a == "--verbose":
			g.Verbosity++
		default:
			rest = append(rest, a)
		}
	}
	return g, rest
}
