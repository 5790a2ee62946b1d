package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/term"
)

func usage() {
	fmt.Print(colorizeHelp(`redisctl [command] [args]

Unified control plane for Redis Cloud and Redis Enterprise: typed
subcommands per resource, a raw API escape hatch, and higher-level
workflows that orchestrate multi-step provisioning.

Usage:
  redisctl <command> [args...]
  redisctl help | -h | --help
  redisctl version | --version

Global flags (any position):
  --profile <name>               profile to use (default: per-platform default)
  --config-file <path>           override the config file location
  -o, --output <auto|table|json|yaml>
  -q, --query <jmespath>         project the result before rendering
  -v | -vv | -vvv                increase log verbosity

Commands:
  redisctl profile <list|path|show|set|remove|default|validate>
  redisctl api <cloud|enterprise> <get|post|put|delete> <path> [--data @file|-|json]
  redisctl cloud <subscription|database|account|task|workflow> ...
  redisctl enterprise <cluster|database|node|support-package|workflow> ...
  redisctl files-key <show|set|clear>
  redisctl completions <bash|zsh|fish>
  redisctl version

Command details
---------------

profile:
  redisctl profile list
  redisctl profile path
  redisctl profile show <name>
  redisctl profile set <name> --type <cloud|enterprise|database> [credential flags]
    cloud:      --api-key <key> --api-secret <secret> [--api-url <url>]
    enterprise: --url <url> --username <user> [--password <pass>] [--insecure]
    database:   --host <host> [--port <n>] [--username <u>] [--password <p>] [--tls] [--db <n>]
  redisctl profile remove <name>
  redisctl profile default <name> --type <cloud|enterprise>
  redisctl profile validate

api:
  redisctl api cloud get /subscriptions/12345
  redisctl api enterprise post /v1/bdbs --data @payload.json
  redisctl api cloud put /subscriptions/12345 --data -

cloud:
  redisctl cloud account get
  redisctl cloud subscription list|get <id>
  redisctl cloud database list --subscription-id <id>
  redisctl cloud database get --subscription-id <id> --database-id <id>
  redisctl cloud task get|wait <task-id>
  redisctl cloud workflow list
  redisctl cloud workflow run <name> [--args <json-object>]

enterprise:
  redisctl enterprise cluster get
  redisctl enterprise database list|get <id>
  redisctl enterprise node list|get
  redisctl enterprise support-package cluster|all-nodes|node|database [id] [--out <path>] [--force] [--optimize]
  redisctl enterprise workflow list
  redisctl enterprise workflow run <name> [--args <json-object>]

files-key:
  redisctl files-key show
  redisctl files-key set <value>
  redisctl files-key clear
`))
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, styleError(err.Error()))
	os.Exit(1)
}

var ansiEnabled = initAnsiEnabled()

func initAnsiEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	if force := strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")); force != "" && force != "0" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func ansi(codes ...string) string {
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorize(s string, codes ...string) string {
	if !ansiEnabled || s == "" {
		return s
	}
	return ansi(codes...) + s + ansi("0")
}

func styleHeading(s string) string { return colorize(s, "1", "36") }
func styleSection(s string) string { return colorize(s, "1", "34") }
func styleCmd(s string) string     { return colorize(s, "1", "32") }
func styleFlag(s string) string    { return colorize(s, "33") }
func styleArg(s string) string     { return colorize(s, "35") }
func styleDim(s string) string     { return colorize(s, "90") }
func styleInfo(s string) string    { return colorize(s, "36") }
func styleSuccess(s string) string { return colorize(s, "32") }
func styleWarn(s string) string    { return colorize(s, "33") }
func styleError(s string) string   { return colorize(s, "31") }
func styleUsage(s string) string   { return colorize(s, "1", "33") }

func styleStatus(s string) string {
	val := strings.ToLower(strings.TrimSpace(s))
	switch val {
	case "active", "running", "ok", "ready", "done", "success", "succeeded", "completed", "available", "up":
		return styleSuccess(s)
	case "blocked", "warning", "warn", "pending", "queued", "processing":
		return styleWarn(s)
	case "failed", "error", "missing", "stopped", "exited", "not found", "down", "cancelled", "canceled":
		return styleError(s)
	default:
		return styleInfo(s)
	}
}

func printUsage(line string) {
	raw := strings.TrimSpace(line)
	if strings.HasPrefix(raw, "usage:") {
		rest := strings.TrimSpace(strings.TrimPrefix(raw, "usage:"))
		fmt.Printf("%s %s\n", styleUsage("usage:"), rest)
		return
	}
	fmt.Println(styleUsage(raw))
}

func printUnknown(kind, cmd string) {
	kind = strings.TrimSpace(kind)
	if kind != "" {
		kind = kind + " "
	}
	fmt.Fprintf(os.Stderr, "%s %s%s\n", styleError("unknown"), kind+"command:", styleCmd(cmd))
}

func warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, styleWarn("warning:")+" "+msg)
}

func infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if containsANSI(msg) {
		fmt.Println(msg)
		return
	}
	fmt.Println(styleInfo(msg))
}

func successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if containsANSI(msg) {
		fmt.Println(msg)
		return
	}
	fmt.Println(styleSuccess(msg))
}

func colorizeHelp(text string) string {
	if !ansiEnabled {
		return text
	}
	sectionRe := regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 /-]*:$`)
	cmdRe := regexp.MustCompile(`\b(redisctl|profile|api|cloud|enterprise|workflow|task|completions|version)\b`)
	flagRe := regexp.MustCompile(`--[a-zA-Z0-9-]+`)
	shortFlagRe := regexp.MustCompile(`(^|\s)(-[a-zA-Z])\b`)
	argRe := regexp.MustCompile(`<[^>]+>`)
	dividerRe := regexp.MustCompile(`^-{3,}$`)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if dividerRe.MatchString(trimmed) {
			lines[i] = indentLine(line, styleDim(trimmed))
			continue
		}
		if sectionRe.MatchString(trimmed) {
			lines[i] = indentLine(line, styleHeading(trimmed))
			continue
		}
		if strings.HasPrefix(trimmed, "Usage:") || strings.HasPrefix(trimmed, "Global flags") || strings.HasPrefix(trimmed, "Commands:") || strings.HasPrefix(trimmed, "Command details") {
			lines[i] = indentLine(line, styleHeading(trimmed))
			continue
		}
		line = flagRe.ReplaceAllStringFunc(line, styleFlag)
		line = shortFlagRe.ReplaceAllStringFunc(line, func(m string) string {
			trim := strings.TrimSpace(m)
			if trim == "" {
				return m
			}
			return strings.Replace(m, trim, styleFlag(trim), 1)
		})
		line = argRe.ReplaceAllStringFunc(line, styleArg)
		line = cmdRe.ReplaceAllStringFunc(line, styleCmd)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func indentLine(line, replacement string) string {
	prefix := line[:len(line)-len(strings.TrimLeft(line, " "))]
	return prefix + replacement
}

var ansiStripRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func containsANSI(s string) bool {
	return ansiStripRe.MatchString(s)
}
