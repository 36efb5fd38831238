package main

import (
	"context"
	"flag"
	"log"

	"telegram-tutoring-bot/internal/config"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/repository"
	"telegram-tutoring-bot/internal/infra/db/postgres"
	"telegram-tutoring-bot/internal/infra/redis"
)

// Sets up a clean, predictable database state for manual end-to-end testing:
// creates the schema if missing, wipes data, and seeds one pending student.
func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/4] Ensuring schema...")
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			chat_id         BIGINT PRIMARY KEY,
			name            TEXT NOT NULL,
			grade           TEXT NOT NULL DEFAULT '',
			exam_info       TEXT NOT NULL DEFAULT '',
			subjects        TEXT NOT NULL DEFAULT '',
			parent_phone    TEXT NOT NULL DEFAULT '',
			weekly_schedule TEXT NOT NULL DEFAULT '',
			plan            TEXT NOT NULL,
			target          TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			joined_at       TIMESTAMPTZ,
			expires_at      TIMESTAMPTZ,
			receipt_file_id TEXT NOT NULL DEFAULT '',
			start_link      TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS student_notifications (
			id      UUID PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			kind    TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (chat_id, kind)
		);
	`)
	if err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	log.Println("[2/4] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	log.Println("[3/4] Wiping existing student data...")
	_, err = pool.Exec(ctx, `TRUNCATE students, student_notifications RESTART IDENTITY CASCADE;`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[4/4] Seeding one pending student...")
	seed, err := model.NewPendingStudent(42, "Test Student", "10", "O/L 2027", "Maths, Science",
		"0770000000", "Mon/Wed 6pm", model.PlanOneMonth, "None", "seed-receipt-file-id")
	if err != nil {
		log.Fatalf("seed student: %v", err)
	}
	repo := postgres.NewStudentRepo(pool)
	if err := repo.Upsert(ctx, repository.NoTX, seed); err != nil {
		log.Fatalf("failed to seed student: %v", err)
	}

	log.Println("--- E2E Environment Ready ---")
}
