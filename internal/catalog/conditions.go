// Package catalog provides MovePilot's read-only reference data: the task
// catalog with its condition predicates and the workflow definitions.
//
// This file implements condition matching of catalog entries against a user
// profile.
package catalog

import (
	"fmt"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"gopkg.in/yaml.v3"
)

// Predicate is one condition on a catalog entry: the profile must carry Key
// with a value from Allowed.
type Predicate struct {
	Key     string
	Allowed []string
}

// Matches reports whether the profile satisfies the predicate. A profile
// that lacks the key never matches.
func (p Predicate) Matches(profile models.Profile) bool {
	value, ok := profile[p.Key]
	if !ok {
		return false
	}
	for _, allowed := range p.Allowed {
		if value == allowed {
			return true
		}
	}
	return false
}

// Conditions is the ordered predicate list of a catalog entry. The YAML
// source writes it as a mapping of key → accepted values; decoding keeps the
// mapping order so evaluation and logging stay deterministic.
type Conditions []Predicate

// MatchAll reports whether every predicate accepts the profile: AND across
// predicates, OR within each allowed list. An empty predicate list is
// vacuously true.
func MatchAll(conditions Conditions, profile models.Profile) bool {
	for _, p := range conditions {
		if !p.Matches(profile) {
			return false
		}
	}
	return true
}

// UnmarshalYAML decodes the conditions mapping into ordered predicates.
func (c *Conditions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("conditions must be a mapping of key to accepted values")
	}
	decoded := make(Conditions, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("failed to decode condition key: %w", err)
		}
		var allowed []string
		if err := node.Content[i+1].Decode(&allowed); err != nil {
			return fmt.Errorf("failed to decode accepted values for %q: %w", key, err)
		}
		decoded = append(decoded, Predicate{Key: key, Allowed: allowed})
	}
	*c = decoded
	return nil
}

// MarshalYAML renders the predicates back into the mapping form used by the
// data files.
func (c Conditions) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range c {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: p.Key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(p.Allowed); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}
