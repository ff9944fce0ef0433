package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify the connection with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// InitSchema создаёт таблицы, если их ещё нет. Имена ограничений
// остаются дефолтными постгресовыми: на них завязан разбор ошибок
// в слое репозиториев.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		logo_key TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS players (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		team_id INTEGER NOT NULL REFERENCES teams(id),
		role TEXT NOT NULL DEFAULT '',
		profile_pic_key TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS matches (
		id SERIAL PRIMARY KEY,
		match_number INTEGER NOT NULL UNIQUE,
		team_a_id INTEGER NOT NULL REFERENCES teams(id),
		team_b_id INTEGER NOT NULL REFERENCES teams(id),
		team_a_score INTEGER NOT NULL DEFAULT 0,
		team_b_score INTEGER NOT NULL DEFAULT 0,
		match_type TEXT NOT NULL DEFAULT '',
		date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status TEXT NOT NULL DEFAULT 'Upcoming',
		match_order INTEGER NOT NULL DEFAULT 0,
		half_time BOOLEAN NOT NULL DEFAULT FALSE,
		team_a_mat INTEGER NOT NULL DEFAULT 7,
		team_b_mat INTEGER NOT NULL DEFAULT 7
	);

	CREATE TABLE IF NOT EXISTS player_stats (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		player_id INTEGER NOT NULL REFERENCES players(id),
		raid_points INTEGER[] NOT NULL DEFAULT '{}',
		defense_points INTEGER[] NOT NULL DEFAULT '{}',
		UNIQUE (match_id, player_id)
	);

	CREATE INDEX IF NOT EXISTS idx_matches_order ON matches(match_order, date);
	CREATE INDEX IF NOT EXISTS idx_player_stats_player_id ON player_stats(player_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
