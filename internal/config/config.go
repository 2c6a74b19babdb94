package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Language        string `yaml:"language"`
	LocaleMaxPasses int    `yaml:"locale_max_passes"`

	// Subgroups whose items and recipes are left out of the catalog.
	ExcludedSubgroups []string `yaml:"excluded_subgroups"`

	// Virtual path substituted for entities without an icon.
	MissingIcon string `yaml:"missing_icon"`

	// Legacy virtual icon paths mapped onto paths that resolve.
	PathRemaps map[string]string `yaml:"path_remaps"`

	UtilitySprites UtilitySprites `yaml:"utility_sprites"`

	// Run the recipe and entity normalizers concurrently.
	Parallel bool `yaml:"parallel"`
}

// UtilitySprites are used when the content tree lacks the utility-sprites table.
type UtilitySprites struct {
	ModuleSlot string `yaml:"module_slot"`
	Clock      string `yaml:"clock"`
}

func Default() Config {
	return Config{
		Language:          "en",
		LocaleMaxPasses:   10,
		ExcludedSubgroups: []string{"fill-barrel", "empty-barrel", "gas-bottle"},
		MissingIcon:       "__core__/graphics/icons/unknown.png",
		// No legacy remaps are known; path_remaps supplies them per install.
		PathRemaps:     map[string]string{},
		UtilitySprites: UtilitySprites{
			ModuleSlot: "__core__/graphics/slot-icon-module.png",
			Clock:      "__core__/graphics/clock-icon.png",
		},
	}
}

// Load reads a YAML config and fills every unset field from Default.
// An empty path yields Default.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := mergo.Merge(&c, Default()); err != nil {
		return c, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("language %q: %w", c.Language, err)
	}
	if c.LocaleMaxPasses <= 0 {
		return fmt.Errorf("locale_max_passes must be positive, got %d", c.LocaleMaxPasses)
	}
	if c.MissingIcon == "" {
		return fmt.Errorf("missing_icon must not be empty")
	}
	return nil
}

func (c Config) Excluded(subgroup string) bool {
	for _, s := range c.ExcludedSubgroups {
		if s == subgroup {
			return true
		}
	}
	return false
}
