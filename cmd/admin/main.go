// Package main provides operator commands for groups and the response cache.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"blogfeed/internal/bootstrap"
	"blogfeed/internal/cache"
	"blogfeed/internal/config"
	"blogfeed/internal/featureflags"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin create-group <slug> <title> [description]  - Create a group")
	fmt.Println("  admin delete-group <slug>                        - Delete a group, keeping its posts")
	fmt.Println("  admin list-groups                                - List all groups")
	fmt.Println("  admin clear-cache                                - Clear the shared response cache")
	fmt.Println("  admin flags                                      - Show configured feature flags")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Args[1] == "flags" {
		listFlags(cfg)
		return
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	groups := repository.NewGroupRepository(rt.DB)

	switch os.Args[1] {
	case "create-group":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		err = createGroup(ctx, groups, os.Args[2], os.Args[3], strings.Join(os.Args[4:], " "))
	case "delete-group":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = deleteGroup(ctx, groups, rt, os.Args[2])
	case "list-groups":
		err = listGroups(ctx, groups)
	case "clear-cache":
		clearCache(ctx, rt)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func createGroup(ctx context.Context, groups repository.GroupRepository, slug, title, description string) error {
	if err := validation.ValidateSlug(slug); err != nil {
		return err
	}
	g := &models.Group{Slug: slug, Title: title, Description: description}
	if err := groups.Create(ctx, g); err != nil {
		return err
	}
	fmt.Printf("Created group %q (ID: %d)\n", g.Slug, g.ID)
	return nil
}

// Posts in the group survive with no group, so rendered pages change.
func deleteGroup(ctx context.Context, groups repository.GroupRepository, rt *bootstrap.Runtime, slug string) error {
	if err := groups.Delete(ctx, slug); err != nil {
		return err
	}
	fmt.Printf("Deleted group %q\n", slug)
	clearCache(ctx, rt)
	return nil
}

func listGroups(ctx context.Context, groups repository.GroupRepository) error {
	list, err := groups.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No groups found")
		return nil
	}
	for _, g := range list {
		fmt.Printf("%4d  %-24s %s\n", g.ID, g.Slug, g.Title)
	}
	return nil
}

// clearCache only reaches running servers when the cache lives in Redis.
func clearCache(ctx context.Context, rt *bootstrap.Runtime) {
	if _, shared := rt.Cache.(*cache.RedisCache); !shared {
		fmt.Println("Response cache is in-process; restart the server to clear it")
		return
	}
	rt.Cache.ClearAll(ctx)
	fmt.Printf("Response cache cleared (epoch %d)\n", rt.Cache.Epoch(ctx))
}

func listFlags(cfg *config.Config) {
	flags := featureflags.NewManager(cfg.FeatureFlags)
	names := flags.Names()
	if len(names) == 0 {
		fmt.Println("No feature flags configured")
	}
	raw := flags.Raw()
	for _, name := range names {
		fmt.Printf("%-24s %-6s enabled=%v\n", name, raw[name], flags.On(name))
	}
	if _, ok := raw[featureflags.InvalidateOnCreate]; !ok {
		fmt.Printf("%-24s %-6s enabled=false\n", featureflags.InvalidateOnCreate, "(unset)")
	}
}
