package models

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/network.schema.json
var networkSchemaJSON []byte

//go:embed defaults/task_network.yaml
var defaultNetworkYAML []byte

const networkSchemaURL = "mem://schemas/network.json"

// NetworkDefinitionJSON represents the document structure for network definitions
type NetworkDefinitionJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	StartPlace  string           `json:"startPlace"`
	Places      []PlaceJSON      `json:"places"`
	Transitions []TransitionJSON `json:"transitions"`
}

// PlaceJSON represents the document structure for places
type PlaceJSON struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Position        Position `json:"position"`
	HasInitialToken bool     `json:"hasInitialToken,omitempty"`
}

// TransitionJSON represents the document structure for transitions
type TransitionJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Condition string    `json:"condition,omitempty"`
	Inputs    []string  `json:"inputs"`
	Outputs   []string  `json:"outputs"`
	Position  *Position `json:"position,omitempty"`
}

// DefinitionParser handles parsing of network definitions from JSON or YAML.
// Documents are checked against the embedded JSON Schema before decoding.
type DefinitionParser struct {
	schema *jsonschema.Schema
}

// NewDefinitionParser creates a new parser with the network schema compiled
func NewDefinitionParser() (*DefinitionParser, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(networkSchemaURL, bytes.NewReader(networkSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add network schema resource: %w", err)
	}
	schema, err := compiler.Compile(networkSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile network schema: %w", err)
	}
	return &DefinitionParser{schema: schema}, nil
}

// ParseJSON parses a network definition from JSON
func (p *DefinitionParser) ParseJSON(data []byte) (*Network, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if err := p.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("network definition does not match schema: %w", err)
	}

	var def NetworkDefinitionJSON
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode network definition: %w", err)
	}
	return p.ParseDefinition(&def)
}

// ParseYAML parses a network definition from YAML. The document is converted
// to JSON so the same schema applies to both formats.
func (p *DefinitionParser) ParseYAML(data []byte) (*Network, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML definition to JSON: %w", err)
	}
	return p.ParseJSON(jsonData)
}

// ParseFile reads a definition file, choosing the format from its extension
func (p *DefinitionParser) ParseFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network definition %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return p.ParseJSON(data)
	case ".yaml", ".yml":
		return p.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported network definition format %q", filepath.Ext(path))
	}
}

// ParseDefinition builds a validated network from a decoded definition
func (p *DefinitionParser) ParseDefinition(def *NetworkDefinitionJSON) (*Network, error) {
	places := make([]*Place, 0, len(def.Places))
	for _, pd := range def.Places {
		name := pd.Name
		if name == "" {
			name = pd.ID
		}
		place := NewPlace(pd.ID, name, pd.Position)
		place.HasInitialToken = pd.HasInitialToken
		places = append(places, place)
	}

	transitions := make([]*Transition, 0, len(def.Transitions))
	for _, td := range def.Transitions {
		name := td.Name
		if name == "" {
			name = td.ID
		}
		t := NewTransition(td.ID, name, td.Inputs, td.Outputs)
		t.SetCondition(td.Condition)
		if td.Position != nil {
			t.Position = &Position{X: td.Position.X, Y: td.Position.Y}
		}
		transitions = append(transitions, t)
	}

	network, err := NewNetwork(def.ID, def.Name, places, transitions, def.StartPlace)
	if err != nil {
		return nil, err
	}
	network.Description = def.Description
	return network, nil
}

// ToDefinition converts a network back to its document form
func ToDefinition(n *Network) *NetworkDefinitionJSON {
	def := &NetworkDefinitionJSON{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		StartPlace:  n.StartPlace().ID,
		Places:      make([]PlaceJSON, len(n.places)),
		Transitions: make([]TransitionJSON, len(n.transitions)),
	}

	for i, place := range n.places {
		def.Places[i] = PlaceJSON{
			ID:              place.ID,
			Name:            place.Name,
			Position:        place.Position,
			HasInitialToken: place.HasInitialToken,
		}
	}

	for i, t := range n.transitions {
		def.Transitions[i] = TransitionJSON{
			ID:        t.ID,
			Name:      t.Name,
			Condition: t.Condition,
			Inputs:    append([]string(nil), t.Inputs...),
			Outputs:   append([]string(nil), t.Outputs...),
			Position:  t.Position,
		}
	}

	return def
}

// DefaultNetwork returns the built-in task workflow network
func DefaultNetwork() (*Network, error) {
	parser, err := NewDefinitionParser()
	if err != nil {
		return nil, err
	}
	return parser.ParseYAML(defaultNetworkYAML)
}
