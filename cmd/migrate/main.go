package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"pawws/internal/infra"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id bigserial PRIMARY KEY,
	email text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	role text NOT NULL DEFAULT 'donor',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS animals (
	id bigserial PRIMARY KEY,
	name text NOT NULL,
	bio text NOT NULL DEFAULT '',
	journey_story text NOT NULL DEFAULT '',
	photo_key text,
	status text NOT NULL DEFAULT 'recovering',
	admission_date timestamptz NOT NULL DEFAULT now(),
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS milestones (
	id bigserial PRIMARY KEY,
	animal_id bigint NOT NULL REFERENCES animals (id),
	title text NOT NULL,
	description text NOT NULL DEFAULT '',
	cost bigint NOT NULL CHECK (cost > 0),
	current_amount bigint NOT NULL DEFAULT 0 CHECK (current_amount >= 0),
	status text NOT NULL DEFAULT 'pending',
	created_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS milestones_animal_idx ON milestones (animal_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS donations (
	id bigserial PRIMARY KEY,
	milestone_id bigint NOT NULL REFERENCES milestones (id),
	user_id bigint REFERENCES users (id),
	amount bigint NOT NULL CHECK (amount > 0),
	proof_key text,
	proof_content_type text,
	country text,
	status text NOT NULL DEFAULT 'pending',
	decided_by bigint REFERENCES users (id),
	decided_at timestamptz,
	created_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS donations_milestone_idx ON donations (milestone_id, status)`,
	`CREATE INDEX IF NOT EXISTS donations_user_idx ON donations (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS payment_qr (
	id smallint PRIMARY KEY,
	blob_key text NOT NULL,
	content_type text NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
}

func main() {
	var (
		dryRunFlag  bool
		timeoutFlag int
	)
	flag.BoolVar(&dryRunFlag, "dry-run", false, "print statements without executing them")
	flag.IntVar(&timeoutFlag, "timeout", 30, "overall timeout in seconds")
	flag.Parse()

	if dryRunFlag {
		for _, stmt := range statements {
			fmt.Println(stmt + ";")
		}
		return
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutFlag)*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to reach database: %w", err))
	}

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			exitWithError(fmt.Errorf("statement %d failed: %w", i+1, err))
		}
	}
	logger.Info().Int("statements", len(statements)).Msg("schema up to date")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "migrate:", err)
	os.Exit(1)
}
