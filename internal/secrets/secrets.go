// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the speech-provider API keys from a directory of
// plain-text files, one file per key: the filename is the key name and the
// trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keyFiles are the keys this tool knows how to use.
var keyFiles = []string{"openai-api-key"}

// Load reads the known key files from dir. A missing directory or a missing
// key file is not an error; absent and empty keys are left out of the map.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)
	for _, name := range keyFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading secret %s: %w", name, err)
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
