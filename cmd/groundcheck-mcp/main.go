package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Harshitk-cp/groundcheck/internal/bootstrap"
	"github.com/Harshitk-cp/groundcheck/internal/buildconfig"
	"github.com/Harshitk-cp/groundcheck/internal/config"
	"github.com/Harshitk-cp/groundcheck/internal/mcpserver"
	"github.com/Harshitk-cp/groundcheck/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = config.Load()

	db := flag.String("db", config.SQLitePath(), "SQLite database path")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if lvl, err := zap.ParseAtomicLevel(config.LogLevel()); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// The MCP server always runs on a local SQLite file.
	stack, err := bootstrap.Open(context.Background(), logger, store.Options{SQLitePath: *db})
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer stack.Close()

	s := mcpserver.New(stack.Memory, buildconfig.Version(), logger)
	logger.Info("groundcheck MCP server starting on stdio", zap.String("db", *db))
	if err := s.ServeStdio(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
