package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	gokitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"classroom-server-go/config"
	"classroom-server-go/db"
	"classroom-server-go/handlers"
	"classroom-server-go/logging"
	"classroom-server-go/models"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file with CLASSROOM_* settings")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logging.NewLogger(os.Stderr, "error").Log("msg", "failed to load config", "err", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)

	kv, err := openKV(cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to open store", "err", err)
		os.Exit(1)
	}

	store := db.NewClassroomStore(kv,
		db.WithKeyPrefix(cfg.KeyPrefix),
		db.WithLogger(gokitlog.With(logger, "component", "store")),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.InitializeStorage(ctx); err != nil {
		cancel()
		level.Error(logger).Log("msg", "failed to initialize storage", "err", err)
		os.Exit(1)
	}
	// seed demo students on an empty store
	if cfg.Seed {
		checkAndSeedData(ctx, store, logger)
	}
	cancel()

	// Create API Handler (injecting the store)
	apiHandler := handlers.NewAPIHandler(store, gokitlog.With(logger, "component", "api"))

	router := gin.Default()
	handlers.RegisterRoutes(router, apiHandler)

	level.Info(logger).Log("msg", "starting server", "addr", cfg.ServerAddr, "storage", cfg.StorageDriver)
	if err := router.Run(cfg.ServerAddr); err != nil {
		level.Error(logger).Log("msg", "failed to run server", "err", err)
		os.Exit(1)
	}
}

func openKV(cfg *config.Config, logger gokitlog.Logger) (db.KV, error) {
	if cfg.StorageDriver == config.DriverMemory {
		level.Warn(logger).Log("msg", "using in-memory storage, data is lost on exit")
		return db.NewMemoryKV(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := db.InitializeRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return db.NewRedisKV(client), nil
}

// checkAndSeedData adds a few demo students when the class is empty
func checkAndSeedData(ctx context.Context, store *db.ClassroomStore, logger gokitlog.Logger) {
	students, err := store.GetStudents(ctx)
	if err != nil {
		level.Warn(logger).Log("msg", "could not check for existing students, skipping seed", "err", err)
		return
	}
	if len(students) > 0 {
		level.Info(logger).Log("msg", "found existing students, skipping seed", "count", len(students))
		return
	}

	level.Info(logger).Log("msg", "no students found, adding demo data")
	demo := []models.StudentInput{
		{Name: "Alice Martins", Registration: "2024001", Email: "alice@example.com"},
		{Name: "Bruno Costa", Registration: "2024002", Email: "bruno@example.com"},
		{Name: "Carla Dias", Registration: "2024003", Email: "carla@example.com"},
	}
	for _, in := range demo {
		if _, err := store.AddStudent(ctx, in); err != nil {
			level.Warn(logger).Log("msg", "failed to add demo student", "registration", in.Registration, "err", err)
		}
	}
}
