// Package main runs the weight MCP server over stdio (for local editor/agent use).
// The same MCP server is also mounted on the main service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	_ "time/tzdata"

	"github.com/2beens/weightstats/internal"
	"github.com/2beens/weightstats/internal/config"
	"github.com/2beens/weightstats/internal/db"
	"github.com/2beens/weightstats/internal/logging"
	weightmcp "github.com/2beens/weightstats/internal/weight/mcp"

	"github.com/go-redis/redis/v8"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("load secrets: %v", err)
	}

	// stdout belongs to the MCP transport
	flushLogs := logging.Setup(logging.LoggerSetupParams{
		LogFileName: cfg.LogsPath,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
		Stdout:      os.Stderr,
	})
	defer flushLogs()

	ctx := context.Background()

	var deps internal.StoreDeps
	switch cfg.StoreBackend {
	case config.StorePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost: cfg.PostgresHost,
			DBPort: cfg.PostgresPort,
			DBName: cfg.PostgresDBName,
		})
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer dbPool.Close()
		deps.DBPool = dbPool
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: secrets.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()
		deps.RedisClient = rdb
	}

	weightService, closeStore, err := internal.NewWeightService(ctx, cfg, deps, nil, nil)
	if err != nil {
		log.Fatalf("weight service: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorf("close store: %s", err)
		}
	}()

	server := weightmcp.NewServer(weightService)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %s", err)
	}
}
