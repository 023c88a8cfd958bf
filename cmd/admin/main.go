// Command admin manages the admin allow-list file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"blog/internal/admins"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin list           - List admins with their names")
	fmt.Println("  go run ./cmd/admin add <user_id>  - Grant admin rights")
	fmt.Println("  go run ./cmd/admin remove <id>    - Revoke admin rights")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	list, err := admins.LoadFile(cfg.AdminIDsFile)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", cfg.AdminIDsFile, err)
	}

	switch os.Args[1] {
	case "list":
		ids := list.IDs()
		if len(ids) == 0 {
			fmt.Println("No admins configured")
			return
		}
		names := userNames(cfg)
		for _, id := range ids {
			name, ok := names[id]
			switch {
			case names == nil:
				fmt.Println(id)
			case ok:
				fmt.Printf("%d\t%s\n", id, name)
			default:
				fmt.Printf("%d\t(no such user)\n", id)
			}
		}

	case "add", "remove":
		if len(os.Args) < 3 {
			usage()
		}
		id, err := parseID(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		var changed bool
		if os.Args[1] == "add" {
			changed = list.Add(id)
		} else {
			changed = list.Remove(id)
		}
		if !changed {
			fmt.Printf("Nothing to do for user %d\n", id)
			return
		}
		if err := list.WriteFile(cfg.AdminIDsFile); err != nil {
			log.Fatalf("Failed to write %s: %v", cfg.AdminIDsFile, err)
		}
		fmt.Printf("Updated %s (%s %d)\n", cfg.AdminIDsFile, os.Args[1], id)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

// userNames maps user ids to "Name <email>". It returns nil when the
// database is unreachable.
func userNames(cfg *config.Config) map[uint]string {
	db, err := database.Connect(cfg)
	if err != nil {
		log.Printf("Database unavailable, listing ids only: %v", err)
		return nil
	}
	users, err := repository.NewUserRepository(db).List(context.Background())
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return nil
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return names
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}
