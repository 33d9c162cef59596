package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv loads a local .env file when present. Runs before the logger is
// built, so plain log is fine here.
func Loadenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
