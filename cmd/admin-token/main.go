package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/adearn/adearn-api/internal/config"
	"github.com/adearn/adearn-api/internal/pkg/jwt"
)

// Issues a reviewer token for the /api/admin routes, signed with JWT_SECRET.
func main() {
	cfg := config.Load()

	subject := flag.String("sub", "ops", "reviewer id written to the token subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if cfg.IsProduction() && cfg.JWTSecret == "super-secret-key-change-me" {
		log.Fatal("refusing to sign with the default JWT_SECRET in production")
	}

	token, err := jwt.NewService(cfg.JWTSecret, *ttl).GenerateAccessToken(*subject, jwt.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
