package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/pollvotes/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollvotes/internal/config"
)

func main() {
	var (
		action string
		steps  int
	)

	flag.StringVar(&action, "action", "up", "Migration action: up, down, force, version")
	flag.IntVar(&steps, "steps", 0, "Number of steps for up/down, or the version for force")
	flag.Parse()

	cfg, err := config.LoadJob()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}

	m, err := postgres.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		err = m.Force(steps)
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal(err)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
		return
	default:
		log.Fatalf("unknown action: %s", action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	fmt.Println(resultMessage(action, steps, errors.Is(err, migrate.ErrNoChange)))
}

func resultMessage(action string, steps int, noChange bool) string {
	if noChange {
		return "No migrations to apply."
	}

	switch action {
	case "up":
		if steps > 0 {
			return fmt.Sprintf("Applied %d migration(s).", steps)
		}
		return "Migrations applied successfully."
	case "down":
		if steps > 0 {
			return fmt.Sprintf("Rolled back %d migration(s).", steps)
		}
		return "All migrations rolled back."
	case "force":
		return fmt.Sprintf("Forced version to %d; dirty flag cleared.", steps)
	}
	return ""
}
