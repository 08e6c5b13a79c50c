package main

import (
	"fmt"
	"strconv"

	"github.com/trezcool/goose"

	appfs "github.com/campushq/backoffice/fs"
)

// mockable
var (
	gooseUpFunc      = goose.Up
	gooseUpByOneFunc = goose.UpByOne
	gooseUpToFunc    = goose.UpTo
	gooseDownFunc    = goose.Down
	gooseDownToFunc  = goose.DownTo
	gooseRedoFunc    = goose.Redo
)

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	switch command {
	case "up":
		return gooseUpFunc(cli.db, appfs.FS, "migrations")
	case "up-by-one":
		return gooseUpByOneFunc(cli.db, appfs.FS, "migrations")
	case "up-to":
		version, err := migrationVersion(command, args[1:])
		if err != nil {
			return err
		}
		return gooseUpToFunc(cli.db, appfs.FS, "migrations", version)
	case "down":
		return gooseDownFunc(cli.db, appfs.FS, "migrations")
	case "down-to":
		version, err := migrationVersion(command, args[1:])
		if err != nil {
			return err
		}
		return gooseDownToFunc(cli.db, appfs.FS, "migrations", version)
	case "redo":
		return gooseRedoFunc(cli.db, appfs.FS, "migrations")
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}

func migrationVersion(command string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s must be of form: migrate %s VERSION", command, command)
	}
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version must be a number (got '%s')", args[0])
	}
	return version, nil
}
