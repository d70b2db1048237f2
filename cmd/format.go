package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/geoquery/citysearch/pkg/core"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 0, 0)

	cityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

// formatCities renders the result list with one numbered entry per city.
func formatCities(cities []*core.City) string {
	if len(cities) == 0 {
		return noDataStyle.Render("No cities found.") + "\n"
	}

	var output strings.Builder
	for i, city := range cities {
		entry := fmt.Sprintf("%d. %s", i+1, cityStyle.Render(city.DisplayName))
		output.WriteString(entry)
		output.WriteString("\n")

		meta := fmt.Sprintf("   %s (%.4f, %.4f)", countryOrUnknown(city.Country), city.Latitude, city.Longitude)
		output.WriteString(metaStyle.Render(meta))
		output.WriteString("\n")
	}
	return output.String()
}

func countryOrUnknown(country string) string {
	if country == "" {
		return "unknown country"
	}
	return cases.Title(language.English).String(country)
}
