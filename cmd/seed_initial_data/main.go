package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"quiz-runner/cmd/seed_initial_data/internal/seedmodels"
	"quiz-runner/internal/adapter"
	"quiz-runner/internal/config"
	"quiz-runner/internal/database"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/repository"
	"quiz-runner/internal/service"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const defaultSeedFilePath = "config/seed_questions.json"

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// Seeds question banks into the data directory and, when a password is given,
// registers the configured admin account. Existing ids and accounts are kept.
func main() {
	seedFilePath := flag.String("file", defaultSeedFilePath, "seed file with question banks")
	adminPassword := flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password for the admin account")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	fs := afero.NewOsFs()
	log.Info("Starting initial data seeding process...", zap.String("data_dir", cfg.Data.Dir))

	if *adminPassword != "" {
		if err := seedAdmin(ctx, cfg, fs, *adminPassword); err != nil {
			log.Fatal("Failed to seed admin account", zap.Error(err))
		}
	}

	log.Info("Loading seed data from file", zap.String("path", *seedFilePath))
	byteValue, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}
	var seed seedmodels.SeedFile
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}

	bank := repository.NewFileQuestionBank(fs, cfg.Data.Dir, nil, cfg.Data.SettingsFile, cfg.Data.UsersFile)
	admin := service.NewAdminService(bank)
	for _, src := range seed.Sources {
		seedSource(ctx, log, admin, src)
	}
	log.Info("Initial data seeding process completed.")
}

func seedAdmin(ctx context.Context, cfg *config.Config, fs afero.Fs, password string) error {
	var accounts domain.AccountRepository
	if cfg.Auth.AccountBackend == config.AccountBackendOracle {
		db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
		if err != nil {
			return err
		}
		defer db.Close()
		accounts = repository.NewSQLXAccountRepository(db)
	} else {
		accounts = repository.NewFileAccountRepository(fs, filepath.Join(cfg.Data.Dir, cfg.Data.UsersFile))
	}

	hasher, err := adapter.NewPasswordHasher(cfg.Auth.PasswordHash)
	if err != nil {
		return err
	}
	auth, err := service.NewAuthService(accounts, hasher, service.NewMemorySessionStore(0), cfg.Auth)
	if err != nil {
		return err
	}

	err = auth.Register(ctx, cfg.Auth.AdminUsername, password)
	if errors.Is(err, domain.ErrDuplicateAccount) {
		logger.Get().Info("Admin account exists, keeping it", zap.String("username", cfg.Auth.AdminUsername))
		return nil
	}
	return err
}

func seedSource(ctx context.Context, log *zap.Logger, admin service.AdminService, src seedmodels.SeedSource) {
	log.Info("Processing source", zap.String("source", src.Name), zap.Int("questions", len(src.Questions)))
	created := 0
	for i := range src.Questions {
		q := &src.Questions[i]
		if _, err := admin.CreateQuestion(ctx, src.Name, q); err != nil {
			if isDuplicateID(err) {
				log.Debug("Question exists, skipping", zap.String("id", q.ID))
				continue
			}
			log.Error("Failed to seed question",
				zap.String("source", src.Name),
				zap.String("question_preview", firstN(q.Question, 40)),
				zap.Error(err))
			continue
		}
		created++
	}
	log.Info("Source seeded", zap.String("source", src.Name), zap.Int("created", created))
}

func isDuplicateID(err error) bool {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Code == domain.CodeDuplicateID {
			return true
		}
	}
	return false
}
