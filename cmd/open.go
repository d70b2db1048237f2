package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/geoquery/citysearch/pkg/browser"
)

// OpenCommand creates the open command
func OpenCommand() *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open a coordinate on OpenStreetMap in the browser",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:     "lat",
				Usage:    "Latitude",
				Required: true,
			},
			&cli.FloatFlag{
				Name:     "lon",
				Usage:    "Longitude",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "Optional label printed with the location",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			lat := c.Float("lat")
			lon := c.Float("lon")
			if err := browser.OpenLocation(lat, lon); err != nil {
				return fmt.Errorf("opening location: %w", err)
			}

			label := c.String("label")
			if label == "" {
				label = fmt.Sprintf("%.6f, %.6f", lat, lon)
			}
			fmt.Printf("Opened %s\n", label)
			return nil
		},
	}
}
