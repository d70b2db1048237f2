package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/geoquery/citysearch/pkg/session"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for cities matching a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Backend to search with (defaults to the configured backend)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this long",
				Value: 30 * time.Second,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("usage: citysearch search <query>")
			}
			return searchCities(c.String("config"), c.Bool("debug"), c.String("backend"), query, c.Duration("timeout"))
		},
	}
}

// searchCities runs one search to completion and prints the results.
func searchCities(configPath string, debug bool, backendName, query string, timeout time.Duration) error {
	cfg, err := loadConfig(configPath, debug)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	hooks := session.Hooks{
		SearchCompleted: func(added int) { done <- nil },
		SearchFailed:    func(msg string) { done <- fmt.Errorf("%s", msg) },
	}

	s, _, err := newSession(cfg, backendName, hooks)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Printf("Warning: failed to close session: %v\n", err)
		}
	}()

	if err := s.Search(query); err != nil {
		return err
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	case <-time.After(timeout):
		s.Cancel()
		return fmt.Errorf("search timed out after %v", timeout)
	}

	cities := s.Cities()
	fmt.Print(titleStyle.Render(fmt.Sprintf("Found %d cities via %s", len(cities), s.BackendName())))
	fmt.Println()
	fmt.Print(formatCities(cities))
	return nil
}
