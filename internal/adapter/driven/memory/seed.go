package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
)

// seedFile is the on-disk layout of a seed file:
//
//	users:
//	  - username: user1
//	    password: password1
type seedFile struct {
	Users []model.Credential `yaml:"users"`
}

// LoadSeedFile reads a YAML seed file and returns the username -> password map.
// Entries with an empty field and repeated usernames are rejected.
func LoadSeedFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %q: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML into a username -> password map.
func ParseSeed(data []byte) (map[string]string, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	users := make(map[string]string, len(f.Users))
	for i, cred := range f.Users {
		if err := cred.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		if _, dup := users[cred.Username]; dup {
			return nil, fmt.Errorf("seed entry %d: duplicate username %q", i, cred.Username)
		}
		users[cred.Username] = cred.Password
	}
	return users, nil
}
