package version

// Version represents the current version of citysearch
const Version = "0.1.0"

// BuildVersion returns the version string for display
func BuildVersion() string {
	return "citysearch version " + Version
}
