package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"vocabclash/internal/audio"
	"vocabclash/internal/config"
	"vocabclash/internal/database"
	"vocabclash/internal/repository"
	"vocabclash/internal/security"
	"vocabclash/internal/service"
)

func main() {
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	deleteCmd := flag.NewFlagSet("delete-template", flag.ExitOnError)
	addPlayerCmd := flag.NewFlagSet("add-player", flag.ExitOnError)
	resetPINCmd := flag.NewFlagSet("reset-pin", flag.ExitOnError)
	pruneCmd := flag.NewFlagSet("prune", flag.ExitOnError)

	importInput := importCmd.String("input", "", "Template bundle path (required)")
	importAudio := importCmd.Bool("audio", false, "Generate pronunciation audio for imported words")

	exportOutput := exportCmd.String("output", "", "Output file path (default: templates_YYYYMMDD_HHMMSS.json)")

	deleteID := deleteCmd.String("id", "", "Template id (required)")

	username := addPlayerCmd.String("username", "", "Username (generated when empty)")
	teacherEmail := addPlayerCmd.String("teacher-email", "", "Teacher email for completion reports")

	resetUsername := resetPINCmd.String("username", "", "Username (required)")

	olderThan := pruneCmd.Duration("older-than", 0, "Remove sessions not updated within this duration (default: SESSION_TTL)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		var pronouncer service.Pronouncer
		if *importAudio {
			pronouncer = audio.NewPronouncer(cfg.AudioDir, cfg.TTSBaseURL, nil)
		}
		handleImport(ctx, service.NewTemplateService(repository.NewTemplateRepository(db), pronouncer, nil), *importInput)

	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, service.NewTemplateService(repository.NewTemplateRepository(db), nil, nil), *exportOutput)

	case "delete-template":
		deleteCmd.Parse(os.Args[2:])
		if *deleteID == "" {
			fmt.Println("Error: -id flag is required")
			deleteCmd.PrintDefaults()
			os.Exit(1)
		}
		templates := service.NewTemplateService(repository.NewTemplateRepository(db), nil, nil)
		if err := templates.Delete(ctx, *deleteID); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		log.Printf("Template %s deleted", *deleteID)

	case "add-player":
		addPlayerCmd.Parse(os.Args[2:])
		handleAddPlayer(ctx, repository.NewPlayerRepository(db), *username, *teacherEmail)

	case "reset-pin":
		resetPINCmd.Parse(os.Args[2:])
		if *resetUsername == "" {
			fmt.Println("Error: -username flag is required")
			resetPINCmd.PrintDefaults()
			os.Exit(1)
		}
		handleResetPIN(ctx, repository.NewPlayerRepository(db), *resetUsername)

	case "prune":
		pruneCmd.Parse(os.Args[2:])
		age := *olderThan
		if age <= 0 {
			age = cfg.SessionTTL
		}
		handlePrune(ctx, repository.NewSessionStateRepository(db), age)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleImport(ctx context.Context, templates *service.TemplateService, inputPath string) {
	f, err := os.Open(inputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Printf("Importing templates from: %s", inputPath)
	n, err := templates.ImportFromReader(ctx, f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import complete! %d templates saved", n)
}

func handleExport(ctx context.Context, templates *service.TemplateService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("templates_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}

	log.Printf("Exporting templates to: %s", outputPath)
	n, err := templates.ExportToWriter(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Export complete! %d templates written", n)
}

// newAuthService builds an auth service for player administration. Tokens are
// never issued here, so any non-empty secret will do.
func newAuthService(players *repository.PlayerRepository) *service.AuthService {
	tokens, err := security.NewTokenIssuer("vocabctl", time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}
	return service.NewAuthService(players, tokens)
}

func handleAddPlayer(ctx context.Context, players *repository.PlayerRepository, username, teacherEmail string) {
	player, pin, err := newAuthService(players).CreatePlayer(ctx, username, teacherEmail)
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	fmt.Printf("Player created\n  id:       %d\n  username: %s\n  PIN:      %s\n", player.ID, player.Username, pin)
	fmt.Println("The PIN is shown once and cannot be recovered.")
}

func handleResetPIN(ctx context.Context, players *repository.PlayerRepository, username string) {
	pin, err := newAuthService(players).ResetPIN(ctx, username)
	if err != nil {
		log.Fatalf("Failed to reset PIN: %v", err)
	}
	fmt.Printf("New PIN for %s: %s\n", username, pin)
	fmt.Println("The PIN is shown once and cannot be recovered.")
}

func handlePrune(ctx context.Context, states *repository.SessionStateRepository, olderThan time.Duration) {
	n, err := states.DeleteStaleStates(ctx, time.Now().Add(-olderThan))
	if err != nil {
		log.Fatalf("Prune failed: %v", err)
	}
	log.Printf("Removed %d sessions not updated in %s", n, olderThan)
}

func printUsage() {
	fmt.Println("VocabClash admin tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vocabctl import -input <file> [-audio]       Import a template bundle")
	fmt.Println("  vocabctl export [-output <file>]             Export all templates as a bundle")
	fmt.Println("  vocabctl delete-template -id <id>            Remove a template")
	fmt.Println("  vocabctl add-player [-username <name>] [-teacher-email <email>]")
	fmt.Println("  vocabctl reset-pin -username <name>          Issue a new PIN")
	fmt.Println("  vocabctl prune [-older-than <duration>]      Remove stale saved sessions")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./vocabclash.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  SESSION_TTL      Default prune age (default: 720h)")
}
