package main

import (
	"fmt"

	"redisctl/internal/errs"
)

func cmdFilesKey(rc *runContext, args []string) error {
	if len(args) == 0 {
		printUsage("usage: redisctl files-key <show|set <value>|clear>")
		return nil
	}
	switch args[0] {
	case "show":
		if rc.Config.FilesAPIKey == "" {
			fmt.Println("(not set)")
			return nil
		}
		fmt.Println(rc.Config.FilesAPIKey)
		return nil
	case "set":
		if len(args) < 2 {
			return errs.New(errs.KindValidation, "files-key set requires a value")
		}
		rc.Config.FilesAPIKey = args[1]
		if err := saveConfig(rc); err != nil {
			return err
		}
		successf("files API key saved")
		return nil
	case "clear":
		rc.Config.FilesAPIKey = ""
		if err := saveConfig(rc); err != nil {
			return err
		}
		successf("files API key cleared")
		return nil
	default:
		return errs.New(errs.KindValidation, "unknown files-key subcommand: "+args[0])
	}
}
