package main

import (
	"fmt"
	"log"

	"expertise-backend/internal/utils"

	"github.com/joho/godotenv"
)

// Prints a long-lived admin token for back-office tooling and scripts.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	token, err := utils.GenerateAdminJWT()
	if err != nil {
		log.Fatalf("error generating admin token: %v", err)
	}

	fmt.Println(token)
}
