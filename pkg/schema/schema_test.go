package schema

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/fields"
)

func TestNewSchemaA(t *testing.T) {
	cfg := config.Default().Generation
	s, err := New(&cfg)
	require.NoError(t, err)

	assert.Equal(t, KindA, s.Kind())
	assert.Equal(t, []string{"Name", "Salary", "BirthDate", "Time"}, s.ColumnNames())
	assert.Len(t, s.Generators(), 4)

	sch := s.Arrow()
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, sch.Field(0).Type))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, sch.Field(1).Type))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Date32, sch.Field(2).Type))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Time32s, sch.Field(3).Type))

	for _, g := range s.Generators()[1:] {
		assert.Equal(t, MissingRateA, g.MissingRate())
	}
}

func TestNewSchemaB(t *testing.T) {
	cfg := config.Default().Generation
	cfg.FieldSchema = "b"
	s, err := New(&cfg)
	require.NoError(t, err)

	assert.Equal(t, KindB, s.Kind())
	assert.Equal(t, []string{"Name", "Height", "BirthDate"}, s.ColumnNames())
	assert.Contains(t, s.String(), "Height")

	height, ok := s.Generators()[1].(fields.Normal)
	require.True(t, ok)
	assert.Equal(t, 170.0, height.Mean)
	assert.Equal(t, MissingRateB, height.MissingRate())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" a ")
	require.NoError(t, err)
	assert.Equal(t, KindA, k)

	_, err = ParseKind("Z")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestCompare(t *testing.T) {
	a := arrow.NewSchema([]arrow.Field{
		{Name: "Name", Type: arrow.BinaryTypes.String},
		{Name: "Salary", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	renamed := arrow.NewSchema([]arrow.Field{
		{Name: "Name", Type: arrow.BinaryTypes.String},
		{Name: "Height", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	retyped := arrow.NewSchema([]arrow.Field{
		{Name: "Name", Type: arrow.BinaryTypes.String},
		{Name: "Salary", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
	short := arrow.NewSchema([]arrow.Field{{Name: "Name", Type: arrow.BinaryTypes.String}}, nil)

	assert.NoError(t, Compare(a, a))

	err := Compare(renamed, a)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "field name mismatch at index 1")

	err = Compare(retyped, a)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "field type mismatch for 'Salary'")

	assert.ErrorIs(t, Compare(short, a), core.ErrSchemaMismatch)
}

func TestSameColumns(t *testing.T) {
	s := arrow.NewSchema([]arrow.Field{
		{Name: "Name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "Height", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	assert.NoError(t, SameColumns(s, []string{"Name", "Height"}))
	assert.ErrorIs(t, SameColumns(s, []string{"Name", "Salary"}), core.ErrSchemaMismatch)
	assert.ErrorIs(t, SameColumns(s, []string{"Name"}), core.ErrSchemaMismatch)
	assert.Contains(t, SchemaToString(s), "1: Height: float64 (nullable)")
}
