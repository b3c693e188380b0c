package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Kolique/controle-tele/internal/config"
	"github.com/Kolique/controle-tele/internal/logger"
	"github.com/Kolique/controle-tele/internal/server"
	"github.com/Kolique/controle-tele/internal/store"
	"github.com/Kolique/controle-tele/internal/util"
)

var (
	port    = flag.Int("port", 0, "port d'écoute (prioritaire sur config.toml)")
	devMode = flag.Bool("dev", false, "mode développement")
	dataDir = flag.String("dataDir", "", "répertoire de données (prioritaire sur config.toml)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalide, valeurs par défaut utilisées: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialisation du journal impossible: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dbPath, err := config.DatabasePath(cfg)
	if err != nil {
		log.Fatal("data directory", zap.Error(err))
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	srv := server.NewServer(cfg, log, st)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port), zap.String("db", dbPath))
		if err := srv.Run(addr); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	if cfg.Server.DevMode {
		log.Info("dev mode", zap.String("url", url))
	} else if err := util.OpenBrowserWithFallback(url); err != nil {
		log.Warn("browser not opened, visit manually", zap.String("url", url), zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
}
