package stream

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"samstream/internal/instance"
	"samstream/pkg/randutil"
)

// Scenario describes a synthetic drifting stream: named concepts with one
// Gaussian center per class, played back as an ordered list of blocks.
// Reusing a concept name in a later block yields recurrent drift.
type Scenario struct {
	Seed       uint32    `toml:"seed"`
	Attributes int       `toml:"attributes"`
	Classes    int       `toml:"classes"`
	Concepts   []Concept `toml:"concepts"`
	Blocks     []Block   `toml:"blocks"`
}

type Concept struct {
	Name    string      `toml:"name"`
	Centers [][]float64 `toml:"centers"`
	Noise   float64     `toml:"noise"`
}

type Block struct {
	Concept string `toml:"concept"`
	Length  int    `toml:"length"`
}

// LoadScenario parses a TOML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	var sc Scenario
	if _, err := toml.DecodeFile(path, &sc); err != nil {
		return nil, fmt.Errorf("unable to decode scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Generator emits the scenario's blocks in order, drawing the class
// uniformly and the attributes from the concept's class center plus
// Gaussian noise.
type Generator struct {
	header   *instance.Header
	scenario *Scenario
	concepts map[string]*Concept
	rng      *randutil.Rand

	block int
	pos   int
}

func NewGenerator(sc *Scenario) (*Generator, error) {
	if sc.Attributes < 1 || sc.Classes < 2 {
		return nil, fmt.Errorf("scenario needs at least one attribute and two classes")
	}
	concepts := make(map[string]*Concept, len(sc.Concepts))
	for i := range sc.Concepts {
		c := &sc.Concepts[i]
		if len(c.Centers) != sc.Classes {
			return nil, fmt.Errorf("concept %q needs one center per class", c.Name)
		}
		for _, center := range c.Centers {
			if len(center) != sc.Attributes {
				return nil, fmt.Errorf("concept %q has a center of wrong dimension", c.Name)
			}
		}
		concepts[c.Name] = c
	}
	for _, b := range sc.Blocks {
		if _, ok := concepts[b.Concept]; !ok {
			return nil, fmt.Errorf("block references unknown concept %q", b.Concept)
		}
	}
	return &Generator{
		header:   instance.NumericHeader(sc.Attributes, sc.Classes),
		scenario: sc,
		concepts: concepts,
		rng:      randutil.New(sc.Seed),
	}, nil
}

func (g *Generator) Header() *instance.Header {
	return g.header
}

func (g *Generator) Next() (*instance.Instance, error) {
	for g.block < len(g.scenario.Blocks) && g.pos >= g.scenario.Blocks[g.block].Length {
		g.block++
		g.pos = 0
	}
	if g.block >= len(g.scenario.Blocks) {
		return nil, io.EOF
	}
	g.pos++

	concept := g.concepts[g.scenario.Blocks[g.block].Concept]
	class := g.rng.Intn(g.scenario.Classes)
	center := concept.Centers[class]
	values := make([]float64, g.scenario.Attributes)
	for i := range values {
		values[i] = center[i] + concept.Noise*g.rng.NormFloat64()
	}
	return instance.New(values, class), nil
}
