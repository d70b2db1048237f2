package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/geoquery/citysearch/pkg/backends"
)

// BackendsCommand creates the backends command
func BackendsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backends",
		Usage: "List known search backends",
		Action: func(ctx context.Context, c *cli.Command) error {
			return listBackends(c.String("config"), c.Bool("debug"))
		},
	}
}

func listBackends(configPath string, debug bool) error {
	cfg, err := loadConfig(configPath, debug)
	if err != nil {
		return err
	}

	registry, err := backends.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("building backend registry: %w", err)
	}

	fmt.Print(titleStyle.Render("Search backends"))
	fmt.Println()

	for _, kind := range registry.Kinds() {
		descriptor, _ := registry.Describe(kind)

		status := "available"
		if !registry.Available(kind) {
			status = "not implemented"
		}
		if kind == registry.DefaultKind() {
			status += ", default"
		}

		fmt.Printf("%s (%s)\n", cityStyle.Render(kind.String()), status)
		fmt.Printf("  %s\n", descriptor.Description)

		credential := "no credential required"
		if descriptor.RequiresCredential {
			credential = "requires credential"
		}
		fmt.Print(metaStyle.Render(fmt.Sprintf("  %s, ~%d requests/min", credential, descriptor.RateLimitPerMinute)))
		fmt.Println()
	}

	return nil
}
