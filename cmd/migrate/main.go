package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/persistence/postgres"
)

func main() {
	app := cli.NewApp()
	app.Name = "migrate"
	app.Usage = "manage the exercise tracker postgres schema"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "postgres-url",
			Usage:  "connection string of the target database",
			EnvVar: "POSTGRES_URL",
			Value:  config.Defaults().PostgresURL,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "up",
			Usage:  "apply all pending migrations",
			Action: withDB(up),
		},
		{
			Name:   "down",
			Usage:  "roll back every applied migration",
			Action: withDB(down),
		},
		{
			Name:   "status",
			Usage:  "list applied and pending migrations",
			Action: withDB(status),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("migrate failed")
	}
}

func withDB(fn func(*sql.DB) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		db, err := sql.Open("pgx", c.GlobalString("postgres-url"))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return fn(db)
	}
}

func up(db *sql.DB) error {
	n, err := postgres.Upgrade(db)
	if err != nil {
		return err
	}
	logrus.WithField("applied", n).Info("migrations applied")
	return nil
}

func down(db *sql.DB) error {
	n, err := postgres.Drop(db)
	if err != nil {
		return err
	}
	logrus.WithField("rolled_back", n).Info("migrations rolled back")
	return nil
}

func status(db *sql.DB) error {
	applied, pending, err := postgres.Status(db)
	if err != nil {
		return err
	}
	for _, id := range applied {
		fmt.Printf("applied  %s\n", id)
	}
	for _, id := range pending {
		fmt.Printf("pending  %s\n", id)
	}
	return nil
}
