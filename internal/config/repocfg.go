package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/akoval/cfgclone/internal/repo"
)

// RepoConfigFile is the repo-local config file name, read from the
// repository root.
const RepoConfigFile = "cfgclone.yaml"

// RepoConfig represents repository-level configuration from cfgclone.yaml.
// Every field is optional; zero values fall back to the format's defaults.
type RepoConfig struct {
	// StructuralIndex overrides the structural index file name
	// (default: "Configuration.xml").
	StructuralIndex string `yaml:"structural_index,omitempty"`

	// DumpIndex overrides the dump-metadata index file name
	// (default: "ConfigDumpInfo.xml").
	DumpIndex string `yaml:"dump_index,omitempty"`

	// RecordContainer overrides the element holding registration records in
	// both indexes (default: "ChildObjects").
	RecordContainer string `yaml:"record_container,omitempty"`

	// IdentifierPrefix overrides the namespace prefix of TypeId/ValueId
	// nodes in definition artifacts (default: "xr"). The prefix is a
	// contract of the consuming system, not of this tool.
	IdentifierPrefix string `yaml:"identifier_prefix,omitempty"`

	// TypeGroups maps entity types to their directory under the repository
	// root. Unlisted types use the pluralized type name.
	TypeGroups map[string]string `yaml:"type_groups,omitempty"`
}

// LoadRepoConfig reads cfgclone.yaml from the repository root.
// A missing file yields an empty config, not an error.
func LoadRepoConfig(root string) (*RepoConfig, error) {
	path := filepath.Join(root, RepoConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RepoConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rc RepoConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &rc, nil
}

// Layout builds the repository layout for root with this config's overrides
// applied.
func (rc *RepoConfig) Layout(root string) repo.Layout {
	return repo.Layout{
		Root:            root,
		StructuralIndex: rc.StructuralIndex,
		DumpIndex:       rc.DumpIndex,
		TypeGroups:      rc.TypeGroups,
	}
}
