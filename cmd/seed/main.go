package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"clouddrive/internal/config"
	"clouddrive/internal/domain/models/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/plans"
	"clouddrive/internal/repository/postgres"
	postgresDrive "clouddrive/internal/repository/postgres/drive"
	serviceDrive "clouddrive/internal/service/drive"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed items")
	clearData := flag.Bool("clear-data", false, "Clear the seed user's items, links, rules and plan (keep schema)")
	userID := flag.String("user", "00000000-0000-0000-0000-000000000001", "Owner of the demo tree")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProd() && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearUserData(ctx, pool, tables, *userID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	catalog, err := plans.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}
	svcs := serviceDrive.SetupServices(&serviceDrive.Repositories{
		Items:     postgresDrive.NewItemRepository(repoConfig),
		Versions:  postgresDrive.NewVersionRepository(repoConfig),
		Links:     postgresDrive.NewLinkRepository(repoConfig),
		Plans:     postgresDrive.NewPlanRepository(repoConfig),
		Rules:     postgresDrive.NewRuleRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
	}, catalog, serviceDrive.SystemClock, serviceDrive.Limits{
		MaxCascadeNodes: cfg.MaxCascadeNodes,
		MaxTreeDepth:    cfg.MaxTreeDepth,
	}, logger)

	log.Println("⚠️  Clearing existing items for seed user...")
	if err := clearUserData(ctx, pool, tables, *userID); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	if _, err := svcs.Quota.EnsurePlan(ctx, *userID); err != nil {
		log.Fatalf("Failed to ensure plan: %v", err)
	}

	log.Println("📁 Seeding demo tree...")
	folders := map[string]string{}
	for _, f := range seedFolders {
		req := &driveSvc.CreateFolderRequest{UserID: *userID, Name: f.name, Color: f.color}
		if f.parent != "" {
			parentID := folders[f.parent]
			req.ParentID = &parentID
		}
		folder, err := svcs.Items.CreateFolder(ctx, req)
		if err != nil {
			log.Fatalf("❌ Failed to create folder '%s': %v", f.name, err)
		}
		folders[f.name] = folder.ID
		log.Printf("✅ Created folder %s (ID: %s)", f.name, folder.ID)
	}

	for i, f := range seedFiles {
		parentID := folders[f.folder]
		res, err := svcs.Items.CreateOrReplaceFile(ctx, &driveSvc.CreateFileRequest{
			UserID:     *userID,
			ParentID:   &parentID,
			Name:       f.name,
			StorageKey: "seed/" + *userID + "/" + f.name,
			Size:       f.size,
			MimeType:   f.mime,
		})
		if err != nil {
			log.Printf("❌ Failed to create file '%s': %v", f.name, err)
			continue
		}
		log.Printf("✅ Created file %d/%d: %s/%s (ID: %s)", i+1, len(seedFiles), f.folder, f.name, res.File.ID)
	}

	// Photos folder resizes every uploaded jpeg
	settings, _ := json.Marshal(map[string]int{"width": 1024})
	_, err = svcs.Automation.UpsertRule(ctx, &driveSvc.UpsertRuleRequest{
		UserID:   *userID,
		FolderID: folders["Photos"],
		IsActive: true,
		Flows: []drive.FlowStep{{
			Filter:  drive.Filter{Field: drive.FieldExtension, Operator: drive.OpEquals, Value: "jpg"},
			Actions: []drive.Action{{Type: "resize", Settings: settings}},
		}},
	})
	if err != nil {
		log.Fatalf("Failed to create folder rule: %v", err)
	}
	log.Println("⚙️  Added resize rule to Photos")

	log.Println("🎉 Seeding complete!")
}

// clearUserData removes everything the user owns; versions, steps and links go with their items
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, userID string) error {
	for _, table := range []string{tables.PublicLinks, tables.FolderRules, tables.FileVersions, tables.Items, tables.Plans} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE owner_id = $1", userID); err != nil {
			return err
		}
	}
	return nil
}

type seedFolder struct {
	name   string
	parent string
	color  string
}

type seedFile struct {
	folder string
	name   string
	mime   string
	size   int64
}

var seedFolders = []seedFolder{
	{name: "Documents", color: "#4285f4"},
	{name: "Reports", parent: "Documents"},
	{name: "Photos", color: "#34a853"},
	{name: "Holiday", parent: "Photos"},
}

var seedFiles = []seedFile{
	{folder: "Documents", name: "notes.txt", mime: "text/plain", size: 2_048},
	{folder: "Reports", name: "q1-summary.pdf", mime: "application/pdf", size: 482_113},
	{folder: "Reports", name: "q2-summary.pdf", mime: "application/pdf", size: 511_920},
	{folder: "Holiday", name: "beach.jpg", mime: "image/jpeg", size: 3_204_771},
	{folder: "Holiday", name: "sunset.jpg", mime: "image/jpeg", size: 2_877_040},
}
