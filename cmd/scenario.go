package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netrank/netrank/ranker"
)

var scenarioValidate = validator.New()

// NetworkSpec describes one candidate network or offer in a scenario file.
type NetworkSpec struct {
	ID           string   `yaml:"id" validate:"required"`
	Transports   []string `yaml:"transports" validate:"required,min=1"`
	Capabilities []string `yaml:"capabilities"`
	Policies     []string `yaml:"policies"`
	LegacyScore  int      `yaml:"legacy_score" validate:"gte=0"`
}

// RequestSpec describes the request a scenario ranks for.
type RequestSpec struct {
	ID         string   `yaml:"id"`
	Transports []string `yaml:"transports"`
	Required   []string `yaml:"required"`
	Forbidden  []string `yaml:"forbidden"`
}

// ScenarioFile is the on-disk shape of a scenario.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ScenarioFile struct {
	Request    RequestSpec   `yaml:"request"`
	Candidates []NetworkSpec `yaml:"candidates" validate:"required,min=1,dive"`
	Incumbent  string        `yaml:"incumbent"`
	Offers     []NetworkSpec `yaml:"offers" validate:"dive"`
}

// Scenario is a resolved scenario ready to hand to the ranker.
type Scenario struct {
	Request    ranker.Request
	Candidates []*ranker.Network
	Incumbent  *ranker.Network // nil when the scenario names none
	Offers     []*ranker.Offer
}

// LoadScenario reads, validates and resolves a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML with strict field checking, so typos
// are errors rather than silently ignored keys.
func ParseScenario(data []byte) (*Scenario, error) {
	var file ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := scenarioValidate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return file.resolve()
}

func (f *ScenarioFile) resolve() (*Scenario, error) {
	req, err := f.Request.resolve()
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	s := &Scenario{Request: req}

	seen := make(map[string]*ranker.Network, len(f.Candidates))
	for _, spec := range f.Candidates {
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate candidate id %q", spec.ID)
		}
		caps, score, err := spec.resolve()
		if err != nil {
			return nil, fmt.Errorf("candidate %q: %w", spec.ID, err)
		}
		n := &ranker.Network{ID: spec.ID, Caps: caps, FullScore: score}
		seen[spec.ID] = n
		s.Candidates = append(s.Candidates, n)
	}

	if f.Incumbent != "" {
		inc, ok := seen[f.Incumbent]
		if !ok {
			return nil, fmt.Errorf("incumbent %q is not a candidate", f.Incumbent)
		}
		s.Incumbent = inc
	}

	offered := make(map[string]bool, len(f.Offers))
	for _, spec := range f.Offers {
		if offered[spec.ID] {
			return nil, fmt.Errorf("duplicate offer id %q", spec.ID)
		}
		offered[spec.ID] = true
		caps, score, err := spec.resolve()
		if err != nil {
			return nil, fmt.Errorf("offer %q: %w", spec.ID, err)
		}
		s.Offers = append(s.Offers, &ranker.Offer{Provider: spec.ID, Caps: caps, FullScore: score})
	}
	return s, nil
}

func (r RequestSpec) resolve() (ranker.Request, error) {
	req := ranker.Request{ID: r.ID}
	if req.ID == "" {
		req.ID = "default"
	}
	var err error
	if req.Transports, err = parseTransports(r.Transports); err != nil {
		return req, err
	}
	if req.Required, err = parseCapabilities(r.Required); err != nil {
		return req, err
	}
	if req.Forbidden, err = parseCapabilities(r.Forbidden); err != nil {
		return req, err
	}
	return req, nil
}

// maxLegacyScore admits the VPN convention of sending one above LegacyIntMax.
const maxLegacyScore = ranker.LegacyIntMax + 1

func (n NetworkSpec) resolve() (ranker.Capabilities, ranker.Score, error) {
	if n.LegacyScore > maxLegacyScore {
		return ranker.Capabilities{}, ranker.Score{}, fmt.Errorf("legacy_score %d above %d", n.LegacyScore, maxLegacyScore)
	}
	transports, err := parseTransports(n.Transports)
	if err != nil {
		return ranker.Capabilities{}, ranker.Score{}, err
	}
	caps, err := parseCapabilities(n.Capabilities)
	if err != nil {
		return ranker.Capabilities{}, ranker.Score{}, err
	}
	policies := make([]ranker.Policy, 0, len(n.Policies))
	for _, name := range n.Policies {
		p, err := ranker.ParsePolicy(name)
		if err != nil {
			return ranker.Capabilities{}, ranker.Score{}, err
		}
		policies = append(policies, p)
	}
	return ranker.Capabilities{Transports: transports, Caps: caps}, ranker.NewScore(n.LegacyScore, policies...), nil
}

func parseTransports(names []string) (ranker.TransportSet, error) {
	var set ranker.TransportSet
	for _, name := range names {
		t, err := ranker.ParseTransport(name)
		if err != nil {
			return 0, err
		}
		set = set.With(t)
	}
	return set, nil
}

func parseCapabilities(names []string) (ranker.CapabilitySet, error) {
	var set ranker.CapabilitySet
	for _, name := range names {
		c, err := ranker.ParseCapability(name)
		if err != nil {
			return 0, err
		}
		set = set.With(c)
	}
	return set, nil
}

// Champion returns the network currently serving the scenario's request,
// i.e. the winner of a full ranking. Nil when nothing satisfies it.
func (s *Scenario) Champion(r *ranker.Ranker) *ranker.Network {
	return r.BestNetwork(s.Request, s.Candidates, s.Incumbent)
}
