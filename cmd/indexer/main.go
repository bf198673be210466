package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/smileworks/clinic-backend/internal/adapters/database"
	"github.com/smileworks/clinic-backend/internal/adapters/search"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/typesense"
	"github.com/smileworks/clinic-backend/pkg/config"
)

// Rebuilds the Typesense directory collections from the schedule gateway.
// Run once after deploying, or on an interval to repair drift.
func main() {
	var intervalFlag string
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	personRepo := database.NewPersonAdapter(pgClient)
	procedureRepo := database.NewProcedureAdapter(pgClient)

	indexed := 0

	for _, role := range []entities.Role{entities.RolePatient, entities.RoleDoctor} {
		category := providers.DirectoryCategoryPatients
		if role == entities.RoleDoctor {
			category = providers.DirectoryCategoryDentists
		}

		persons, err := personRepo.ListByRole(ctx, role)
		if err != nil {
			return err
		}
		for _, person := range persons {
			if err := adapter.Index(ctx, category, providers.DirectoryCandidate{
				ID:          person.ID,
				DisplayName: person.FullName,
			}); err != nil {
				log.Printf("Failed to index %s %s: %v", role, person.ID, err)
				continue
			}
			indexed++
		}
	}

	procedures, err := procedureRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, procedure := range procedures {
		if err := adapter.Index(ctx, providers.DirectoryCategoryProcedures, providers.DirectoryCandidate{
			ID:              procedure.ID,
			DisplayName:     procedure.Name,
			DurationMinutes: procedure.DurationMinutes,
		}); err != nil {
			log.Printf("Failed to index procedure %s: %v", procedure.ID, err)
			continue
		}
		indexed++
	}

	log.Printf("Indexed %d directory documents", indexed)
	return nil
}
