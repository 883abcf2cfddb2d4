package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const splitNetworkJSON = `{
  "id": "split",
  "name": "Split network",
  "startPlace": "A",
  "places": [
    {"id": "A", "name": "Start", "position": {"x": 0, "y": 0}},
    {"id": "B", "position": {"x": 50, "y": 0}},
    {"id": "C", "position": {"x": 50, "y": 50}, "hasInitialToken": true}
  ],
  "transitions": [
    {"id": "fork", "inputs": ["A"], "outputs": ["B", "C"], "condition": "always"}
  ]
}`

func TestParseJSONDefinition(t *testing.T) {
	parser, err := NewDefinitionParser()
	require.NoError(t, err)

	n, err := parser.ParseJSON([]byte(splitNetworkJSON))
	require.NoError(t, err)
	require.Equal(t, "split", n.ID)

	b, ok := n.Place("B")
	require.True(t, ok)
	require.Equal(t, "B", b.Name, "name defaults to id")

	fork, ok := n.Transition("fork")
	require.True(t, ok)
	require.Equal(t, "always", fork.Condition)
	require.Equal(t, []string{"B", "C"}, fork.Outputs)

	require.Len(t, n.InitialPlaces(), 1)
}

func TestParseJSONRejectsSchemaViolations(t *testing.T) {
	parser, err := NewDefinitionParser()
	require.NoError(t, err)

	cases := map[string]string{
		"missing start place":    `{"id":"x","places":[{"id":"A","position":{"x":0,"y":0}}],"transitions":[]}`,
		"place without position": `{"id":"x","startPlace":"A","places":[{"id":"A"}],"transitions":[]}`,
		"weighted arc field": `{"id":"x","startPlace":"A","places":[{"id":"A","position":{"x":0,"y":0}}],
			"transitions":[{"id":"t","inputs":["A"],"outputs":["A"],"weight":2}]}`,
		"empty outputs": `{"id":"x","startPlace":"A","places":[{"id":"A","position":{"x":0,"y":0}}],
			"transitions":[{"id":"t","inputs":["A"],"outputs":[]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseJSON([]byte(doc))
			require.Error(t, err)
			require.Contains(t, err.Error(), "does not match schema")
		})
	}
}

func TestParseJSONRejectsDanglingReference(t *testing.T) {
	parser, err := NewDefinitionParser()
	require.NoError(t, err)

	doc := `{"id":"x","startPlace":"A","places":[{"id":"A","position":{"x":0,"y":0}}],
		"transitions":[{"id":"t","inputs":["A"],"outputs":["MISSING"]}]}`
	_, err = parser.ParseJSON([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-existent output place: MISSING")
}

func TestParseFileByExtension(t *testing.T) {
	parser, err := NewDefinitionParser()
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "net.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(splitNetworkJSON), 0o644))
	n, err := parser.ParseFile(jsonPath)
	require.NoError(t, err)
	require.Equal(t, "split", n.ID)

	yamlPath := filepath.Join(dir, "net.yml")
	yamlDoc := "id: y\nstartPlace: A\nplaces:\n  - id: A\n    position: {x: 1, y: 2}\ntransitions: []\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o644))
	n, err = parser.ParseFile(yamlPath)
	require.NoError(t, err)
	a, _ := n.Place("A")
	require.Equal(t, Position{X: 1, Y: 2}, a.Position)

	_, err = parser.ParseFile(filepath.Join(dir, "net.toml"))
	require.Error(t, err)
}

func TestDefaultNetwork(t *testing.T) {
	n, err := DefaultNetwork()
	require.NoError(t, err)

	require.Len(t, n.Places(), 8)
	require.Len(t, n.Transitions(), 10)
	require.Equal(t, "BACKLOG", n.StartPlace().ID)
	require.Empty(t, n.InitialPlaces())

	backlog, _ := n.Place("BACKLOG")
	require.Equal(t, Position{X: 100, Y: 200}, backlog.Position)

	plan, ok := n.Transition("PLAN")
	require.True(t, ok)
	require.Equal(t, []string{"BACKLOG"}, plan.Inputs)
	require.Equal(t, "READY", plan.PrimaryOutput())
}

func TestToDefinitionRoundTrip(t *testing.T) {
	n, err := DefaultNetwork()
	require.NoError(t, err)

	parser, err := NewDefinitionParser()
	require.NoError(t, err)

	again, err := parser.ParseDefinition(ToDefinition(n))
	require.NoError(t, err)
	require.Equal(t, ToDefinition(n), ToDefinition(again))
}
