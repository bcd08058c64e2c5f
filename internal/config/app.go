package config

import (
	"os"
	"strings"
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Port returns APP_PORT as a listen address; a bare port number gets a
// leading colon.
func Port() string {
	port := os.Getenv("APP_PORT")
	if port != "" && !strings.Contains(port, ":") {
		port = ":" + port
	}
	return port
}
