package workflow

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/validator"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"
)

const manualVertexPrefix = "manual:"

// statusRGB is the DOT fill colour of a step for each status
var statusRGB = map[StepStatus][3]uint8{
	StepPending:   {235, 235, 235},
	StepSucceeded: {152, 223, 138},
	StepFailed:    {240, 128, 128},
	StepSkipped:   {190, 190, 190},
}

// Dependency is one or more artifacts flowing from a producer to a consumer.
// From is a step name or a manual input vertex.
type Dependency struct {
	From      string
	To        string
	Artifacts []string
}

// Definition is the dependency graph derived from the declared step inputs
// and outputs
type Definition struct {
	Graph        graph.Graph[string, string]
	Dependencies []Dependency
	// Problems are inconsistencies that make the declared order unsafe
	Problems []string
}

// AnalyzeDefinition links every declared step input to the step producing it.
// An input must be produced by an earlier step, be a manual input, or already
// exist under the root. statuses colours the step vertices; nil means pending.
func AnalyzeDefinition(cfg config.Config, statuses map[string]StepStatus) (*Definition, error) {
	def := &Definition{
		Graph: graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
	}

	for _, s := range cfg.Steps {
		status := statuses[s.Name]
		if status == "" {
			status = StepPending
		}
		fill, err := statusColor(status)
		if err != nil {
			return nil, err
		}
		err = def.Graph.AddVertex(s.Name,
			graph.VertexAttribute("label", fmt.Sprintf("%d. %s", s.Number, s.Name)),
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", fill),
			graph.VertexAttribute("tooltip", s.Target),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add step %s", s.Name)
		}
	}

	type edgeKey struct{ from, to string }
	edges := make(map[edgeKey][]string)
	var order []edgeKey

	link := func(from, to, artifact string) {
		k := edgeKey{from, to}
		if _, ok := edges[k]; !ok {
			order = append(order, k)
		}
		edges[k] = append(edges[k], artifact)
	}

	for j, consumer := range cfg.Steps {
		for _, in := range consumer.Inputs {
			produced := false
			for i, producer := range cfg.Steps {
				if !producesArtifact(producer, in) {
					continue
				}
				produced = true
				switch {
				case i == j:
					def.Problems = append(def.Problems, fmt.Sprintf("step %q consumes its own output %s", consumer.Name, in))
				case i > j:
					def.Problems = append(def.Problems, fmt.Sprintf("step %q consumes %s produced by later step %q", consumer.Name, in, producer.Name))
				default:
					link(producer.Name, consumer.Name, in)
				}
			}
			if produced {
				continue
			}

			if mi, ok := manualInputFor(cfg.ManualInputs, in); ok {
				vertex := manualVertexPrefix + mi.Name
				if _, err := def.Graph.Vertex(vertex); err != nil {
					err = def.Graph.AddVertex(vertex,
						graph.VertexAttribute("label", mi.Name),
						graph.VertexAttribute("shape", "note"),
					)
					if err != nil {
						return nil, errors.Wrapf(err, "unable to add manual input %s", mi.Name)
					}
				}
				link(vertex, consumer.Name, in)
				continue
			}

			if files, err := ResolveArtifact(cfg.Root, in); err != nil || len(files) == 0 {
				def.Problems = append(def.Problems, fmt.Sprintf("step %q needs %s, which no earlier step produces, is not a manual input and does not exist", consumer.Name, in))
			}
		}
	}

	for _, k := range order {
		artifacts := edges[k]
		err := def.Graph.AddEdge(k.from, k.to, graph.EdgeAttribute("label", edgeLabel(artifacts)))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add edge from %s to %s", k.from, k.to)
		}
		def.Dependencies = append(def.Dependencies, Dependency{From: k.from, To: k.to, Artifacts: artifacts})
	}
	return def, nil
}

func producesArtifact(s Step, artifact string) bool {
	for _, out := range s.Outputs {
		if ArtifactsOverlap(out.Path, artifact) {
			return true
		}
	}
	return false
}

func manualInputFor(inputs []config.ManualInputConfig, artifact string) (config.ManualInputConfig, bool) {
	for _, mi := range inputs {
		if mi.Kind == config.ManualFile && mi.Path != "" && ArtifactsOverlap(mi.Path, artifact) {
			return mi, true
		}
	}
	return config.ManualInputConfig{}, false
}

func edgeLabel(artifacts []string) string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a[strings.LastIndex(a, "/")+1:]
	}
	sort.Strings(names)
	return strings.Join(names, `\n`)
}

func statusColor(status StepStatus) (string, error) {
	rgb, ok := statusRGB[status]
	if !ok {
		rgb = statusRGB[StepPending]
	}
	c, err := colors.RGB(rgb[0], rgb[1], rgb[2])
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}
	return c.ToHEX().String(), nil
}

// WriteDOT renders the definition graph in Graphviz DOT format
func (d *Definition) WriteDOT(w io.Writer, title string) error {
	err := draw.DOT(d.Graph, w,
		draw.GraphAttribute("rankdir", "LR"),
		draw.GraphAttribute("label", title),
	)
	if err != nil {
		return errors.Wrap(err, "unable to render graph")
	}
	return nil
}

// DefinitionCheck reports the problems of the declared step inputs and outputs
func DefinitionCheck(cfg config.Config) validator.Check {
	const name = "pipeline definition"
	return validator.Check{
		Name: name,
		Run: func(ctx context.Context) validator.Diagnostic {
			def, err := AnalyzeDefinition(cfg, nil)
			if err != nil {
				return validator.Fail(name, "cannot build step graph: %v", err)
			}
			if len(def.Problems) > 0 {
				d := validator.Fail(name, "Pipeline definition has %d problem(s):", len(def.Problems))
				for _, p := range def.Problems {
					d.Details = append(d.Details, "- "+p)
				}
				return d
			}
			return validator.Pass(name, "Pipeline definition consistent (%d steps, %d dependencies)",
				len(cfg.Steps), len(def.Dependencies))
		},
	}
}
