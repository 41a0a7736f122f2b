// Command hisab-init bootstraps the credential file: it guarantees the
// default admin account exists and can set or rotate passwords for
// additional dashboard users.
//
// Usage:
//
//	hisab-init                      # seed the default admin account
//	hisab-init <user> <password>    # set a user's password
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"hisab/internal/auth"
	"hisab/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	creds, err := auth.Open(cfg.DataDir, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("open credential file: %v", err)
	}

	switch len(os.Args) {
	case 1:
		log.Printf("credential file ready in %s, users: %v", cfg.DataDir, creds.Users())
	case 3:
		user, password := os.Args[1], os.Args[2]
		if err := creds.SetPassword(user, password); err != nil {
			log.Fatalf("set password for %s: %v", user, err)
		}
		log.Printf("password set for %s", user)
	default:
		log.Fatalf("usage: hisab-init [<user> <password>]")
	}
}
