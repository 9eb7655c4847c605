// Command mkuser creates a user account directly in the store, bypassing
// the HTTP signup endpoint. Useful for seeding development databases.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/photonp05/VartaLab/internal/auth"
	"github.com/photonp05/VartaLab/internal/store"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "password (required)")
	name := flag.String("name", "", "display name (defaults to username)")
	dbPath := flag.String("db", "", "SQLite path (ignored when DATABASE_URL is set)")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: mkuser -username alice -password secret [-name Alice] [-db ./data/vartalab.db]")
		os.Exit(1)
	}

	displayName := *name
	if displayName == "" {
		displayName = *username
	}

	ctx := context.Background()

	var ds store.DataStore
	var err error
	if url := os.Getenv("DATABASE_URL"); url != "" {
		ds, err = store.NewPostgresStore(ctx, url)
	} else {
		ds, err = store.NewSQLiteStore(ctx, *dbPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer ds.Close()

	existing, err := ds.GetUserByUsername(ctx, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Fprintf(os.Stderr, "username %q already exists (id=%d)\n", *username, existing.ID)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	user, err := ds.CreateUser(ctx, *username, displayName, hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created user %q (id=%d)\n", user.Username, user.ID)
}
