package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/fakeset/pkg/core"
)

// Compare reports whether got matches want exactly: same field count, and
// per position the same name, type and nullability. The returned error wraps
// core.ErrSchemaMismatch and lists every difference.
func Compare(got, want *arrow.Schema) error {
	if got.NumFields() != want.NumFields() {
		return fmt.Errorf("%w: field count mismatch: got %d, expected %d",
			core.ErrSchemaMismatch, got.NumFields(), want.NumFields())
	}

	var problems []string
	for i := 0; i < got.NumFields(); i++ {
		g, w := got.Field(i), want.Field(i)

		if g.Name != w.Name {
			problems = append(problems, fmt.Sprintf("field name mismatch at index %d: got '%s', expected '%s'",
				i, g.Name, w.Name))
			continue
		}
		if !arrow.TypeEqual(g.Type, w.Type) {
			problems = append(problems, fmt.Sprintf("field type mismatch for '%s': got '%s', expected '%s'",
				g.Name, g.Type, w.Type))
		}
		if g.Nullable != w.Nullable {
			problems = append(problems, fmt.Sprintf("field nullability mismatch for '%s': got %v, expected %v",
				g.Name, g.Nullable, w.Nullable))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrSchemaMismatch, strings.Join(problems, "; "))
	}
	return nil
}

// SameColumns is the relaxed form of Compare used on data read back from text
// formats, where nullability and exact types are not preserved: only the
// column names and their order must agree.
func SameColumns(got *arrow.Schema, names []string) error {
	if got.NumFields() != len(names) {
		return fmt.Errorf("%w: field count mismatch: got %d, expected %d",
			core.ErrSchemaMismatch, got.NumFields(), len(names))
	}
	for i, name := range names {
		if got.Field(i).Name != name {
			return fmt.Errorf("%w: field name mismatch at index %d: got '%s', expected '%s'",
				core.ErrSchemaMismatch, i, got.Field(i).Name, name)
		}
	}
	return nil
}

// SchemaToString renders a schema as one field per line.
func SchemaToString(s *arrow.Schema) string {
	var sb strings.Builder
	for i, f := range s.Fields() {
		nullable := ""
		if f.Nullable {
			nullable = " (nullable)"
		}
		fmt.Fprintf(&sb, "  %d: %s: %s%s\n", i, f.Name, f.Type, nullable)
	}
	return sb.String()
}
