package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// Credential sources, most specific first. INSPECTION_GCP_CREDENTIALS lets a
// deployment scope the inspection service to its own service account while
// other tools on the host keep the ambient ADC variables.
var credentialEnvKeys = []string{
	"INSPECTION_GCP_CREDENTIALS",
	"GOOGLE_APPLICATION_CREDENTIALS_JSON",
	"GOOGLE_APPLICATION_CREDENTIALS",
}

// clientOptions returns the credential option shared by the storage, Document
// AI and Vision clients. A value starting with "{" is inline key JSON; any
// other value is a key file path. No option means application default creds.
func clientOptions(lookup func(string) (string, bool)) []option.ClientOption {
	for _, key := range credentialEnvKeys {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "{") {
			return []option.ClientOption{option.WithCredentialsJSON([]byte(v))}
		}
		return []option.ClientOption{option.WithCredentialsFile(v)}
	}
	return nil
}
