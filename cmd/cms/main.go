package main

import (
	"os"

	"github.com/joho/godotenv"

	"codista-cms/internal/cli"
	"codista-cms/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables", nil)
	}

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
