package db

import (
	"errors"
	"fmt"

	dbpkg "github.com/dtnitsch/llm-log-parser/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunOrLatest returns the run named by the first argument (full id or
// unique prefix), or the latest run when no argument is given.
func GetRunOrLatest(c *cli.Context, database *dbpkg.DB) (*dbpkg.Run, error) {
	if c.NArg() == 0 {
		run, err := database.LatestRun()
		if errors.Is(err, dbpkg.ErrRunNotFound) {
			return nil, fmt.Errorf("no runs found. Run 'llp aggregate --baseline <folder> <root>' first")
		}
		return run, err
	}
	return database.GetRun(c.Args().First())
}

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
