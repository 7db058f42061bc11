package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptionsFromEnv reads credentials from GOOGLE_APPLICATION_CREDENTIALS_JSON
// (inline JSON) or GOOGLE_APPLICATION_CREDENTIALS (file path). With neither
// set, the default credential chain applies; GCS_ANONYMOUS=true skips auth
// for public buckets.
func ClientOptionsFromEnv() []option.ClientOption {
	opts := []option.ClientOption{}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GCS_ANONYMOUS"))) {
	case "1", "true", "yes":
		return append(opts, option.WithoutAuthentication())
	}
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
