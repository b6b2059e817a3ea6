package ranker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration holds the toggles that change the policy cascade.
// A Ranker swaps whole Configurations atomically; never mutate one after
// handing it to SetConfiguration.
type Configuration struct {
	// ActivelyPreferBadWiFi widens "preferred bad Wi-Fi" from ever-validated
	// Wi-Fi to any evaluated Wi-Fi that is not an unresolved captive portal.
	ActivelyPreferBadWiFi bool `yaml:"actively_prefer_bad_wifi"`
}

// LoadConfiguration reads and parses a YAML ranker configuration file.
// Missing keys keep their zero value.
func LoadConfiguration(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("reading ranker config: %w", err)
	}
	return ParseConfiguration(data)
}

// ParseConfiguration parses YAML ranker configuration bytes.
func ParseConfiguration(data []byte) (Configuration, error) {
	var conf Configuration
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Configuration{}, fmt.Errorf("parsing ranker config: %w", err)
	}
	return conf, nil
}
