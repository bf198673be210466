package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/smileworks/clinic-backend/internal/adapters/database"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	"github.com/smileworks/clinic-backend/pkg/config"
)

// Seeds the procedure catalog and a few demo users so the booking form has
// something to look up. Safe to rerun; duplicate emails are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := goqu.New("postgres", pgClient.DB())

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				appointments,
				procedure,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed the procedure catalog
	procedures := []goqu.Record{
		{"procedure_id": uuid.New().String(), "procedure_name": "Routine Check-up", "duration_minutes": 30},
		{"procedure_id": uuid.New().String(), "procedure_name": "Dental Cleaning", "duration_minutes": 45},
		{"procedure_id": uuid.New().String(), "procedure_name": "Tooth Filling", "duration_minutes": 45},
		{"procedure_id": uuid.New().String(), "procedure_name": "Root Canal", "duration_minutes": 90},
		{"procedure_id": uuid.New().String(), "procedure_name": "Tooth Extraction", "duration_minutes": 60},
		{"procedure_id": uuid.New().String(), "procedure_name": "Teeth Whitening", "duration_minutes": 60},
		{"procedure_id": uuid.New().String(), "procedure_name": "Emergency Consultation", "duration_minutes": 30},
	}

	for _, p := range procedures {
		query, args, err := db.Insert("procedure").Rows(p).ToSQL()
		if err != nil {
			log.Fatalf("Failed to build procedure insert: %v", err)
		}
		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			log.Printf("Failed to create procedure %v: %v", p["procedure_name"], err)
		}
	}
	log.Printf("Seeded %d procedures", len(procedures))

	// 2. Seed dentists and demo patients through the person adapter so the
	// same validation and duplicate handling applies as in the API.
	personRepo := database.NewPersonAdapter(pgClient)

	now := time.Now()
	people := []*entities.Person{
		{
			ID:          uuid.New().String(),
			FullName:    "Dr. Akosua Adjei",
			Email:       "akosua.adjei@smileworks.clinic",
			PhoneNumber: "0302555101",
			DateOfBirth: time.Date(1980, 4, 12, 0, 0, 0, 0, time.UTC),
			Role:        entities.RoleDoctor,
		},
		{
			ID:          uuid.New().String(),
			FullName:    "Dr. Kwame Boateng",
			Email:       "kwame.boateng@smileworks.clinic",
			PhoneNumber: "0302555102",
			DateOfBirth: time.Date(1975, 11, 3, 0, 0, 0, 0, time.UTC),
			Role:        entities.RoleDoctor,
		},
		{
			ID:          uuid.New().String(),
			FullName:    "Jane Mensah",
			Email:       "jane.mensah@example.com",
			PhoneNumber: "0245551234",
			DateOfBirth: time.Date(1991, 7, 22, 0, 0, 0, 0, time.UTC),
			Role:        entities.RolePatient,
			HealthHistory: []entities.HealthHistorySnapshot{
				{MedicalCondition: "none", Allergies: "penicillin", LastUpdated: now},
			},
		},
		{
			ID:          uuid.New().String(),
			FullName:    "Yaw Owusu",
			Email:       "yaw.owusu@example.com",
			PhoneNumber: "0245551299",
			DateOfBirth: time.Date(1985, 2, 14, 0, 0, 0, 0, time.UTC),
			Role:        entities.RolePatient,
			HealthHistory: []entities.HealthHistorySnapshot{
				{MedicalCondition: "diabetes", Medications: "metformin", LastUpdated: now},
			},
		},
	}

	for _, person := range people {
		person.CreatedAt = now
		person.UpdatedAt = now
		if person.HealthHistory == nil {
			person.HealthHistory = []entities.HealthHistorySnapshot{}
		}
		if err := personRepo.Create(ctx, person); err != nil {
			log.Printf("Failed to create %s %s: %v", person.Role, person.FullName, err)
		}
	}
	log.Printf("Seeded %d people", len(people))

	if os.Getenv("SEED_DUMP") == "true" {
		dump, _ := json.MarshalIndent(people, "", "  ")
		log.Printf("Seeded people:\n%s", dump)
	}
}
