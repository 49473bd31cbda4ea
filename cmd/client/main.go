// Command client is an interactive terminal front end for one watch-list:
// it drives the debounced search flow against the external catalog and adds
// selected results to the list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yeymeap/MovieRate/internal/config"
	"github.com/yeymeap/MovieRate/internal/reconcile"
	"github.com/yeymeap/MovieRate/internal/repository"
	"github.com/yeymeap/MovieRate/internal/store"
	"github.com/yeymeap/MovieRate/internal/tmdb"
	"github.com/yeymeap/MovieRate/pkg/logging"
)

func main() {
	var (
		listID = flag.String("list", "", "list id to search against")
		userID = flag.String("user", "", "acting user id")
	)
	flag.Parse()

	logger := logging.Setup()

	if *listID == "" || *userID == "" {
		logger.Error("both -list and -user are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	gateway, err := tmdb.NewHTTPClient(cfg.TMDBURL, cfg.TMDBAPIKey, time.Duration(cfg.TMDBTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.Error("init tmdb client", "error", err)
		os.Exit(1)
	}

	repo := repository.New(st)
	engine := reconcile.NewEngine(repo.Movies, repo.Overlay, logger)

	sess, err := newSession(dbCtx, engine, repo.Movies, gateway, cfg, *listID, *userID, logger, os.Stdout)
	if err != nil {
		logger.Error("start session", "error", err)
		os.Exit(1)
	}
	defer sess.close()

	fmt.Println("type to search; \"add <n>\" selects a result; \"quit\" exits")
	sess.run(os.Stdin)
}
