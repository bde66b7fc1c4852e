package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/pkg/auth"
)

func main() {
	operator := flag.String("operator", "", "operator name recorded in the token")
	admin := flag.Bool("admin", false, "allow stock adjustments and catalog changes")
	flag.Parse()

	if *operator == "" {
		log.Fatal("Usage: go run scripts/issue_token.go -operator <name> [-admin]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(*operator, *admin)
	if err != nil {
		log.Fatal("Error signing token:", err)
	}

	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(token)
	if err != nil {
		log.Fatal("Token verification failed:", err)
	}

	fmt.Printf("Operator: %s (admin: %t)\n", claims.Operator, claims.IsAdmin)
	fmt.Printf("Expires: %s\n", claims.ExpiresAt.Time.Format("2006-01-02 15:04 MST"))
	fmt.Printf("Token: %s\n", token)
	fmt.Println("✅ Token verified successfully!")
}
