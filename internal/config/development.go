package config

import "os"

// Development reports whether DEVELOPMENT is set to anything but "0". ok is
// false when the variable is absent or empty.
func Development() (development bool, ok bool) {
	value, ok := os.LookupEnv("DEVELOPMENT")
	if !ok || value == "" {
		return false, false
	}
	return value != "0", true
}
