// Package main provides a tool to create users in the appraisal database.
//
// Usage:
//
//	go run ./cmd/seed -username admin -password secret -role admin
//	DATA_PATH=~/Appraisal/data go run ./cmd/seed -username clerk -password secret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mbjewelry/appraisal-server/internal/auth"
	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/store"
	"github.com/mbjewelry/appraisal-server/internal/store/sqlite"
)

var (
	username = flag.String("username", "", "Username for the new account (required)")
	password = flag.String("password", "", "Password for the new account (required)")
	role     = flag.String("role", "user", "Account role: user or admin")
	list     = flag.Bool("list", false, "List existing users instead of creating one")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "Appraisal", "data")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "appraisal.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *list {
		listUsers(ctx, s)
		return
	}

	if *username == "" || *password == "" {
		flag.Usage()
		log.Fatal("Both -username and -password are required")
	}

	userRole := domain.Role(*role)
	if userRole != domain.RoleUser && userRole != domain.RoleAdmin {
		log.Fatalf("Invalid role %q: must be user or admin", *role)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     *username,
		PasswordHash: hash,
		Role:         userRole,
		IsActive:     true,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Fatalf("User %q already exists", *username)
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Created %s account %q (id %d)\n", userRole, user.Username, user.ID)
}

func listUsers(ctx context.Context, s *sqlite.Store) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if len(users) == 0 {
		fmt.Println("No users in database")
		return
	}
	for _, u := range users {
		state := "active"
		if !u.IsActive {
			state = "disabled"
		}
		fmt.Printf("%6d  %-20s %-6s %s\n", u.ID, u.Username, u.Role, state)
	}
}
