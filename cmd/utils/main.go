package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/serving/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "serving-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := aqm.LoadConfig("SERVING", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel := config.GetStringOrDef("log.level", "info")
	logger := aqm.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed-demo":
		if err := commands.SeedDemo(ctx, config, logger); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		logger.Info("Demo seeding completed")

	case "clear-demo":
		if err := commands.ClearDemo(ctx, config, logger); err != nil {
			log.Fatalf("Clear demo data failed: %v", err)
		}
		logger.Info("Demo data cleared")

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("Database reset failed: %v", err)
		}
		logger.Info("Database reset completed")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - serving dashboard utility commands

Usage:
  %s <command> [options]

Commands:
  seed-demo    Create today's demo serving groups and attendance logs
  clear-demo   Remove the rows created by seed-demo
  reset-db     Drop the serving database and dismissed alerts (USE WITH CAUTION)
  version      Print version information
  help         Show this help message

Environment Variables:
  SERVING_DB_MONGO_URL   MongoDB connection URL (default: mongodb://localhost:27017)
  SERVING_DB_MONGO_NAME  Database name (default: appetite_serving)
  SERVING_REDIS_ADDR     Redis address (default: localhost:6379)
  SERVING_LOG_LEVEL      Log level: debug, info, error (default: info)

Examples:
  %s seed-demo
  SERVING_DB_MONGO_URL=mongodb://localhost:27017 %s reset-db

`, appName, appName, appName, appName)
}
