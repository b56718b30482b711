// Package schema defines the field schemas a dataset can be generated with.
package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/fields"
)

// Kind names a field schema variant.
type Kind string

const (
	// KindA produces Name, Salary, BirthDate, Time.
	KindA Kind = "A"

	// KindB produces Name, Height, BirthDate (date and time combined).
	KindB Kind = "B"
)

// Per-field missing probabilities of each variant.
const (
	MissingRateA = 0.5
	MissingRateB = 0.3
)

// Schema is an ordered set of field generators and the Arrow schema they fill.
// A Schema is immutable and safe to share between workers.
type Schema struct {
	kind       Kind
	generators []fields.Generator
	arrow      *arrow.Schema
}

// ParseKind accepts "a", "A", "b" or "B".
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindA:
		return KindA, nil
	case KindB:
		return KindB, nil
	default:
		return "", core.Invalidf("unknown field schema %q", s)
	}
}

// New builds the schema selected by cfg.FieldSchema with the configured
// distribution parameters.
func New(cfg *config.GenerationConfig) (*Schema, error) {
	kind, err := ParseKind(cfg.FieldSchema)
	if err != nil {
		return nil, err
	}

	start, end := cfg.BirthWindow()

	var gens []fields.Generator
	switch kind {
	case KindA:
		gens = []fields.Generator{
			fields.WorkerName{Name: "Name"},
			fields.IntRange{Name: "Salary", Min: cfg.Salary.Min, Max: cfg.Salary.Max, Missing: MissingRateA},
			fields.DateRange{Name: "BirthDate", Start: start, End: end, Missing: MissingRateA},
			fields.TimeOfDay{Name: "Time", Missing: MissingRateA},
		}
	case KindB:
		gens = []fields.Generator{
			fields.PersonName{Name: "Name"},
			fields.Normal{Name: "Height", Mean: cfg.Height.Mean, StdDev: cfg.Height.StdDev, Decimals: 2, Missing: MissingRateB},
			fields.DateTime{Name: "BirthDate", Start: start, End: end, Missing: MissingRateB},
		}
	}

	return FromGenerators(kind, gens...), nil
}

// FromGenerators assembles a schema from explicit generators.
func FromGenerators(kind Kind, gens ...fields.Generator) *Schema {
	fs := make([]arrow.Field, len(gens))
	for i, g := range gens {
		fs[i] = g.Field()
	}
	return &Schema{
		kind:       kind,
		generators: gens,
		arrow:      arrow.NewSchema(fs, nil),
	}
}

func (s *Schema) Kind() Kind { return s.kind }

// Arrow returns the Arrow schema of generated records.
func (s *Schema) Arrow() *arrow.Schema { return s.arrow }

// Generators returns the field generators in column order.
func (s *Schema) Generators() []fields.Generator { return s.generators }

// ColumnNames returns the header of the serialized table.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.generators))
	for i, g := range s.generators {
		names[i] = g.Field().Name
	}
	return names
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema %s (%s)", s.kind, strings.Join(s.ColumnNames(), ", "))
}
