package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/buildledger/import-backend/internal/cli"
)

func main() {
	// Best effort; config falls back to real environment variables.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
