package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/config"
	"github.com/seniorstay/staycation-api/internal/logger"
	"github.com/seniorstay/staycation-api/internal/store/schema"
)

func main() {
	skipNormalize := flag.Bool("skip-normalize", false, "only apply the schema")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("db ping", zap.Error(err))
	}

	if err := schema.Apply(ctx, db); err != nil {
		log.Fatal("schema", zap.Error(err))
	}
	log.Info("schema applied")

	if *skipNormalize {
		return
	}
	n, err := schema.NormalizeStatuses(ctx, db, log)
	if err != nil {
		log.Fatal("status normalization", zap.Error(err))
	}
	log.Info("status normalization done", zap.Int64("rows", n))
}
