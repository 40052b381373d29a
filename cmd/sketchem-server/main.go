package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvasquez/sketchem/internal/mol"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv, err := NewServer(logger)
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	// Apply the YAML config file and watch it for changes
	if cfg.ConfigFile != "" {
		fileCfg, err := loadFileConfig(cfg.ConfigFile)
		if err != nil {
			logger.Fatalf("Failed to load config file: %v", err)
		}
		srv.applyFileConfig(fileCfg)

		watcher, err := watchConfigFile(cfg.ConfigFile, logger, srv.applyFileConfig)
		if err != nil {
			logger.Warnf("Config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	// Create the startup session, seeded from the molecule file when given
	var initial *mol.Molecule
	if cfg.MoleculeFile != "" {
		doc, m, err := loadInitialMoleculeFromFile(cfg.MoleculeFile)
		if err != nil {
			logger.Fatalf("Failed to load molecule file %s: %v", cfg.MoleculeFile, err)
		}
		logger.Infof("Molecule loaded: file=%s name=%s atoms=%d", cfg.MoleculeFile, doc.Name, m.AtomCount())
		initial = m
	}
	if _, err := srv.sessions.CreateSession(mol.SessionID(cfg.DefaultSession), initial); err != nil {
		logger.Fatalf("Failed to create startup session: %v", err)
	}

	http.HandleFunc("/healthz", srv.handleHealth)
	http.HandleFunc("/sessions", srv.handleSessions)
	http.HandleFunc("/sessions/", srv.handleSessionRoutes)
	http.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	http.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)
	http.HandleFunc("/ws", srv.handleWebSocket)
	http.Handle("/metrics", promhttp.Handler())

	logger.Infof("sketchem-server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
