package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"redisctl/internal/errs"
)

// sensitiveLogFields names request/response fields that must never reach the
// log output in cleartext, regardless of verbosity.
var sensitiveLogFields = map[string]bool{
	"data": true, "body": true, "rawbody": true, "password": true,
	"api_secret": true, "apisecret": true, "secret": true, "authorization": true,
}

// cliEventLogger renders apiclient request/response events as single-line
// stderr entries, gated by -v/-vv/-vvv verbosity.
type cliEventLogger struct {
	verbosity int
}

// debugOnlyLogFields names fields that only print at -vv and above: the
// masked Cloud auth-header summary belongs here, distinct from the
// request/response tracing that -v already shows.
var debugOnlyLogFields = map[string]bool{
	"auth": true,
}

func (l cliEventLogger) Log(event map[string]any) {
	if l.verbosity <= 0 {
		return
	}
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		if sensitiveLogFields[strings.ToLower(k)] {
			continue
		}
		if debugOnlyLogFields[strings.ToLower(k)] && l.verbosity < 2 {
			continue
		}
		fmt.Fprintf(&b, "%s=%v ", k, event[k])
	}
	line := strings.TrimSpace(b.String())
	if line == "" {
		return
	}
	fmt.Fprintln(os.Stderr, styleDim(line))
}

// logCommand prints a single sanitized entry/exit line for a dispatched
// command, per §4.9: fields must already be an explicit allowlist for the
// command variant (never raw --data/--password/--api-secret values).
func logCommand(verbosity int, name string, fields map[string]string, start time.Time, err error) {
	if verbosity <= 0 {
		return
	}
	elapsed := time.Since(start).Round(time.Millisecond)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, fields[k])
	}
	fmt.Fprintf(&b, " duration=%s", elapsed)
	if err == nil {
		fmt.Fprintln(os.Stderr, styleDim(b.String()+" status=ok"))
		return
	}
	b.WriteString(" status=error")
	if verbosity >= 2 {
		b.WriteString(" cause=" + causeChain(err))
	}
	fmt.Fprintln(os.Stderr, styleWarn(b.String()))
}

// causeChain renders the wrapped-error chain for -vv+ diagnostics, never
// including credential material since errs.Error never carries it.
func causeChain(err error) string {
	var parts []string
	for err != nil {
		parts = append(parts, err.Error())
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return strings.Join(parts, " <- ")
}

// reportError prints the single human-readable stderr line every failed
// command produces, with cause chains added at -v and above, and returns the
// process exit code for err per §7.
func reportError(verbosity int, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, styleError(err.Error()))
	if verbosity >= 1 {
		if chain := causeChain(err); chain != "" {
			fmt.Fprintln(os.Stderr, styleDim("cause: "+chain))
		}
	}
	return errs.ExitCode(err)
}
