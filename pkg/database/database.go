package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(dbURL, redisAddr string) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

// CreateTables creates the schema the API and worker expect.
func (c *Clients) CreateTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		otp_only BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS founders (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES users(id),
		data JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS investors (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES users(id),
		data JSONB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS investor_interests (
		investor_id UUID NOT NULL,
		founder_id UUID NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (investor_id, founder_id)
	);

	CREATE TABLE IF NOT EXISTS portfolio_investments (
		investor_id UUID NOT NULL,
		founder_id UUID NOT NULL,
		amount BIGINT NOT NULL,
		invested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (investor_id, founder_id)
	);

	CREATE TABLE IF NOT EXISTS marketplace_listings (
		founder_id UUID PRIMARY KEY,
		raise_amount BIGINT NOT NULL,
		min_ticket BIGINT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		use_of_funds TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS success_fee_requests (
		founder_id UUID PRIMARY KEY,
		round_label TEXT NOT NULL DEFAULT '',
		target_amount BIGINT NOT NULL,
		committed BIGINT NOT NULL DEFAULT 0,
		deck_url TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := c.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
