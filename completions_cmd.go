package main

import (
	"fmt"
	"os"
	"strings"
)

var rootCommandNames = []string{
	"version", "completions", "profile", "api", "cloud", "enterprise", "files-key", "help",
}

func cmdCompletions(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, styleError("usage:")+" redisctl completions <bash|zsh|fish>")
		os.Exit(1)
	}
	switch args[0] {
	case "bash":
		fmt.Print(bashCompletionScript())
	case "zsh":
		fmt.Print(zshCompletionScript())
	case "fish":
		fmt.Print(fishCompletionScript())
	default:
		fmt.Fprintln(os.Stderr, styleError("unsupported shell:")+" "+args[0])
		os.Exit(1)
	}
}

func bashCompletionScript() string {
	return fmt.Sprintf(`_redisctl_completions() {
    local cur=${COMP_WORDS[COMP_CWORD]}
    COMPREPLY=( $(compgen -W "%s" -- "$cur") )
}
complete -F _redisctl_completions redisctl
`, strings.Join(rootCommandNames, " "))
}

func zshCompletionScript() string {
	return fmt.Sprintf(`#compdef redisctl
_redisctl() {
  _arguments '1: :(%s)'
}
compdef _redisctl redisctl
`, strings.Join(rootCommandNames, " "))
}

func fishCompletionScript() string {
	var b strings.Builder
	for _, name := range rootCommandNames {
		fmt.Fprintf(&b, "complete -c redisctl -n \"__fish_use_subcommand\" -a %s\n", name)
	}
	return b.String()
}
