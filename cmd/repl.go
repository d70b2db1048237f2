package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/geoquery/citysearch/pkg/browser"
	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/session"
)

// ReplCommand creates the repl command
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive search shell",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runRepl(ctx, c.String("config"), c.Bool("debug"))
		},
	}
}

// runRepl reads queries from stdin until EOF or an interrupt. Lines
// starting with ':' are shell commands; everything else is a search query.
// Changes to the configuration file are picked up live.
func runRepl(ctx context.Context, configPath string, debug bool) error {
	cfg, err := loadConfig(configPath, debug)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	hooks := session.Hooks{
		SearchCompleted: func(added int) { done <- nil },
		SearchFailed:    func(msg string) { done <- fmt.Errorf("%s", msg) },
	}

	s, registry, err := newSession(cfg, "", hooks)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Printf("Warning: failed to close session: %v\n", err)
		}
	}()

	// Re-resolve the default backend when the config file changes. Only a
	// changed backend name triggers a swap; a running session is not
	// disturbed for unrelated edits.
	if err := config.Watch(ctx, configPath, func(newCfg *config.Config) {
		if newCfg.DefaultBackend == "" || newCfg.DefaultBackend == s.BackendName() {
			return
		}
		if err := s.SetBackendByName(newCfg.DefaultBackend); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Switching backend: %v", err)))
			return
		}
		fmt.Printf("\nConfig changed, now using backend %s\n> ", s.BackendName())
	}); err != nil {
		// The repl works without live reload; the config file may not exist.
		fmt.Printf("Note: config watching disabled: %v\n", err)
	}

	var kindNames []string
	for _, kind := range registry.AvailableKinds() {
		kindNames = append(kindNames, kind.String())
	}

	fmt.Print(titleStyle.Render(fmt.Sprintf("citysearch repl - backend %s", s.BackendName())))
	fmt.Println()
	fmt.Println("Type a query to search. Commands: :backend <name>, :clear, :stats, :open <n>, :quit")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok = <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":quit", line == ":exit":
			return nil
		case strings.HasPrefix(line, ":"):
			replCommand(s, kindNames, line)
		default:
			replSearch(ctx, s, line, done)
		}
	}
}

// replCommand dispatches one ':' command.
func replCommand(s *session.Session, kinds []string, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":backend":
		if len(fields) < 2 {
			fmt.Printf("Current backend: %s (known: %s)\n", s.BackendName(), strings.Join(kinds, ", "))
			return
		}
		if err := s.SetBackendByName(fields[1]); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Switching backend: %v", err)))
			return
		}
		fmt.Printf("Now using backend %s\n", s.BackendName())
	case ":clear":
		s.ClearResults()
		fmt.Println("Results cleared")
	case ":stats":
		fmt.Printf("Backend: %s\n", s.BackendName())
		fmt.Printf("Results: %d\n", s.Count())
		fmt.Printf("Searches: %d succeeded, %d failed\n", s.SuccessCount(), s.FailureCount())
		if s.LastError() != "" {
			fmt.Printf("Last error: %s\n", s.LastError())
		}
	case ":open":
		if len(fields) < 2 {
			fmt.Println("Usage: :open <result number>")
			return
		}
		openResult(s, fields[1])
	default:
		fmt.Printf("Unknown command %s\n", fields[0])
	}
}

func replSearch(ctx context.Context, s *session.Session, query string, done chan error) {
	// Drop any leftover outcome from a search that was abandoned (Search
	// errors also fire the failure hook).
	select {
	case <-done:
	default:
	}

	if err := s.Search(query); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Search failed: %v", err)))
		return
	}

	select {
	case err := <-done:
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Search failed: %v", err)))
			return
		}
	case <-time.After(30 * time.Second):
		s.Cancel()
		fmt.Println(errorStyle.Render("Search timed out"))
		return
	case <-ctx.Done():
		s.Cancel()
		return
	}

	cities := s.Cities()
	fmt.Print(headerStyle.Render(fmt.Sprintf("%d results", len(cities))))
	fmt.Println()
	fmt.Print(formatCities(cities))
}

// openResult opens the nth result of the current result set in the browser.
func openResult(s *session.Session, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Printf("Not a result number: %s\n", arg)
		return
	}

	cities := s.Cities()
	if n < 1 || n > len(cities) {
		fmt.Printf("Result %d out of range, have %d results\n", n, len(cities))
		return
	}

	city := cities[n-1]
	if err := browser.OpenLocation(city.Latitude, city.Longitude); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Opening %s: %v", city.DisplayName, err)))
		return
	}
	fmt.Printf("Opened %s\n", city.DisplayName)
}
