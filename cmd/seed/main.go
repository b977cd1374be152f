package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/lukian/user-api/config"
)

type seedUser struct {
	email       string
	firstName   string
	lastName    string
	birthDate   string
	address     string
	phoneNumber string
}

// seed inserts a handful of demo users for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []seedUser{
		{"john.doe@example.com", "John", "Doe", "1990-01-01", "1 Main St", "123456789"},
		{"jane.doe@example.com", "Jane", "Doe", "1994-10-20", "2 Main St", "987654321"},
		{"sam.smith@example.com", "Sam", "Smith", "1985-03-10", "", ""},
	}

	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (email, first_name, last_name, birth_date, address, phone_number)
			VALUES ($1, $2, $3, $4::date, $5, $6)
			ON CONFLICT (email) WHERE is_deleted = FALSE
			DO UPDATE SET updated_at = now()
			RETURNING id
		`, u.email, u.firstName, u.lastName, u.birthDate, u.address, u.phoneNumber).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: id=%d email=%s\n", id, u.email)
	}
}
