// Package browser opens map locations in the system web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/geoquery/citysearch/pkg/log"
)

const mapZoom = 15

// LocationURL returns the OpenStreetMap URL for a coordinate, with a marker
// placed on it.
func LocationURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=%d/%.6f/%.6f",
		latitude, longitude, mapZoom, latitude, longitude)
}

// OpenLocation opens the coordinate in the system browser. Out-of-range
// coordinates are rejected before anything is launched.
func OpenLocation(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %g out of range [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %g out of range [-180, 180]", longitude)
	}
	return OpenURL(LocationURL(latitude, longitude))
}

// OpenURL launches the platform browser for the given URL.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	log.ForComponent("browser").Debugf("opening %s", url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	return nil
}
