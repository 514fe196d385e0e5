package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the schema. Statements are idempotent so the server can
// run them unconditionally at startup.
func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			user_type TEXT NOT NULL CHECK (user_type IN ('mentor', 'mentee')),
			avatar_url TEXT,
			bio TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS mentor_profiles (
			id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			user_id UUID REFERENCES users NOT NULL,
			expertise TEXT[] NOT NULL,
			hourly_rate DECIMAL(10, 2),
			is_available BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS mentorship_sessions (
			id UUID PRIMARY KEY,
			mentor_id UUID REFERENCES users NOT NULL,
			mentee_id UUID REFERENCES users NOT NULL,
			start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			end_time TIMESTAMP WITH TIME ZONE,
			status TEXT NOT NULL CHECK (status IN ('scheduled', 'in_progress', 'completed', 'cancelled')),
			topic TEXT NOT NULL,
			notes TEXT,
			transcript_url TEXT,
			recording_url TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			session_id UUID REFERENCES mentorship_sessions NOT NULL,
			sender_id UUID REFERENCES users NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS mentor_ratings (
			id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			mentor_id UUID REFERENCES users NOT NULL,
			mentee_id UUID REFERENCES users NOT NULL,
			session_id UUID REFERENCES mentorship_sessions NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			review TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ai_chat_sessions (
			id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			user_id UUID REFERENCES users NOT NULL,
			topic TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ai_chat_messages (
			id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			session_id UUID REFERENCES ai_chat_sessions NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			session_id UUID REFERENCES mentorship_sessions NOT NULL,
			mentee_id UUID REFERENCES users NOT NULL,
			razorpay_order_id TEXT NOT NULL UNIQUE,
			amount_paise BIGINT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('created', 'verified', 'failed')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
