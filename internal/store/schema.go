package store

import (
	"context"

	"github.com/pkg/errors"
)

// The one-vote-per-user-per-poll invariant lives in the UNIQUE
// (user_id, poll_id) constraint on votes. Application-level checks only
// exist to give a clean rejection; the constraint closes the race.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	uuid UUID NOT NULL DEFAULT gen_random_uuid(),
	google_id TEXT UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL DEFAULT '',
	phone_number TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS polls (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL CHECK (type IN ('normal', 'blockchain')),
	blockchain_id BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS options (
	id SERIAL PRIMARY KEY,
	poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	position INTEGER NOT NULL,
	UNIQUE (poll_id, position)
);

CREATE TABLE IF NOT EXISTS votes (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	option_id INTEGER NOT NULL REFERENCES options(id),
	poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_options_poll_id ON options(poll_id);
CREATE INDEX IF NOT EXISTS idx_votes_poll_id ON votes(poll_id);
CREATE INDEX IF NOT EXISTS idx_votes_option_id ON votes(option_id);
`

// Migrate applies the schema. Every statement is idempotent, so this
// runs unconditionally at startup.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}
