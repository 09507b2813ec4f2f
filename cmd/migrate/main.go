package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ballotbox/config"
	"ballotbox/pkg/database"
)

const usage = `
BallotBox - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Apply all SQL migrations
  status      Show database connection status
  truncate    Truncate all tables (DANGEROUS)

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp(*migrationsDir)
	case "status":
		showStatus()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(dir string) {
	log.Printf("Applying migrations from %s...", dir)
	if err := database.ApplyRawMigrations(dir); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied successfully")
}

func showStatus() {
	if err := database.HealthCheck(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}

	var version string
	if err := database.DB.QueryRow("SELECT version()").Scan(&version); err != nil {
		log.Fatalf("Failed to query server version: %v", err)
	}
	fmt.Printf("Connected: %s\n", version)

	tables := []string{"profiles", "sessions", "polls", "poll_options", "votes"}
	for _, table := range tables {
		var count int64
		err := database.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			fmt.Printf("  %-14s (missing)\n", table)
			continue
		}
		fmt.Printf("  %-14s %d rows\n", table, count)
	}
}

func runTruncate() {
	fmt.Print("This will DELETE ALL DATA. Type 'yes' to continue: ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Aborted")
		return
	}

	_, err := database.DB.Exec(`TRUNCATE votes, poll_options, polls, sessions, profiles CASCADE`)
	if err != nil {
		log.Fatalf("Truncate failed: %v", err)
	}
	log.Println("All tables truncated")
}
