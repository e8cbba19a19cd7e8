package store

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		role VARCHAR(50) NOT NULL,
		email VARCHAR(150) NOT NULL UNIQUE,
		password TEXT NOT NULL,
		age INT,
		phone VARCHAR(15),
		address TEXT,
		created_at TIMESTAMP DEFAULT NOW(),
		updated_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id SERIAL PRIMARY KEY,
		user_id INT REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		is_completed BOOLEAN DEFAULT FALSE,
		due_date DATE,
		created_at TIMESTAMP DEFAULT NOW(),
		updated_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id)`,
}

// Migrate creates the users and todos tables if they do not exist.
// It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	return s.do(ctx, "migrate", func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := s.db.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
