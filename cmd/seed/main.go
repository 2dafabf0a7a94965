package main

import (
	"database/sql"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/yudapratama/go-auth-api/config"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
)

type demoUser struct {
	email       string
	firstName   string
	lastName    string
	dateOfBirth string
}

var demoUsers = []demoUser{
	{"admin@example.com", "Admin", "User", "1990-01-01"},
	{"user@example.com", "Demo", "User", "1995-05-15"},
	{"test@example.com", "Test", "User", "1988-12-25"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword("DemoPass123")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, u := range demoUsers {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (email, password_hash, first_name, last_name, date_of_birth, is_active)
			VALUES (lower($1), $2, $3, $4, $5, TRUE)
			ON CONFLICT (lower(email)) DO UPDATE
				SET first_name = EXCLUDED.first_name,
					last_name = EXCLUDED.last_name,
					updated_at = now()
			RETURNING id
		`, u.email, hash, u.firstName, u.lastName, u.dateOfBirth).Scan(&id)
		if err != nil {
			log.Fatalf("seed %s: %v", u.email, err)
		}
		log.Printf("seeded %s (id=%s)", u.email, id)
	}
}
