package config

import (
	"fmt"
	"os"
	"strings"
)

// Credentials are the vendor API credentials, supplied via environment
// variables (a .env file is honored when present).
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads API_USERNAME and API_PASSWORD from the environment.
// Missing variables are fatal at startup, listed together so the operator
// can fix them in one pass.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		Username: os.Getenv("API_USERNAME"),
		Password: os.Getenv("API_PASSWORD"),
	}

	var missing []string
	if creds.Username == "" {
		missing = append(missing, "API_USERNAME")
	}
	if creds.Password == "" {
		missing = append(missing, "API_PASSWORD")
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing required environment variables: %s",
			strings.Join(missing, ", "))
	}
	return creds, nil
}
