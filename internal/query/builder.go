package query

import (
	"strconv"
	"strings"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/rules"
)

// DefaultTolerance is the simplification tolerance in degrees.
const DefaultTolerance = 0.00025

// Output column names shared by every sub-query.
const (
	GeometryColumn = "WKT"
	LevelColumn    = "LEVEL"
	LayerColumn    = "LAYERS"
)

// UnifiedQuery is the UNION ALL of one sub-query per eligible layer.
type UnifiedQuery struct {
	SQL string
	// Layers lists the eligible layers in sub-query order.
	Layers []string
}

// Builder renders rules as SQLite-dialect sub-queries whose columns agree in
// name, order and type: geometry, the optional level code, the layer name
// and the value column.
type Builder struct {
	Tolerance   float64
	ValueColumn string
	ValueType   rules.ValueType
	LevelColumn bool
}

// NewBuilder returns a builder for the mode's output columns.
func NewBuilder(mode rules.Mode, tolerance float64) Builder {
	return Builder{
		Tolerance:   tolerance,
		ValueColumn: mode.ValueColumn,
		ValueType:   mode.ValueType,
		LevelColumn: mode.LevelColumn,
	}
}

// Columns returns the output column names of every sub-query.
func (b Builder) Columns() []string {
	cols := []string{GeometryColumn}
	if b.LevelColumn {
		cols = append(cols, LevelColumn)
	}
	return append(cols, LayerColumn, b.ValueColumn)
}

// Build probes every rule of table against the cell, in table order, and
// unions the sub-queries of the eligible layers. It returns a nil query when
// no layer is eligible. The probe results of all rules are returned either
// way.
func (b Builder) Build(ds engine.Dataset, level byte, table *rules.Table) (*UnifiedQuery, []Eligibility) {
	var (
		parts    []string
		layers   []string
		verdicts []Eligibility
	)
	for _, r := range table.Rules() {
		field, _ := r.RequiredField()
		e := Probe(ds, r.LayerName(), field)
		verdicts = append(verdicts, e)
		if !e.Eligible() {
			continue
		}
		parts = append(parts, b.SubQuery(r, level))
		layers = append(layers, r.LayerName())
	}

	if len(parts) == 0 {
		return nil, verdicts
	}
	return &UnifiedQuery{
		SQL:    strings.Join(parts, " UNION ALL "),
		Layers: layers,
	}, verdicts
}

// SubQuery renders the query for one rule.
func (b Builder) SubQuery(r rules.Rule, level byte) string {
	var sb strings.Builder

	sb.WriteString("SELECT ST_MakeValid(ST_SimplifyPreserveTopology(geometry, ")
	sb.WriteString(strconv.FormatFloat(b.Tolerance, 'f', -1, 64))
	sb.WriteString(")) AS ")
	sb.WriteString(GeometryColumn)

	if b.LevelColumn {
		sb.WriteString(", ")
		sb.WriteString(quoteLiteral(string(level)))
		sb.WriteString(" AS ")
		sb.WriteString(LevelColumn)
	}

	sb.WriteString(", ")
	sb.WriteString(quoteLiteral(r.LayerName()))
	sb.WriteString(" AS ")
	sb.WriteString(LayerColumn)

	sb.WriteString(", ")
	sb.WriteString(b.valueExpr(r))

	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(r.LayerName()))

	if field, ok := r.RequiredField(); ok {
		f := quoteIdent(field)
		sb.WriteString(" WHERE ")
		sb.WriteString(f)
		sb.WriteString(" IS NOT NULL AND ")
		sb.WriteString(f)
		sb.WriteString(" != ''")
	}

	return sb.String()
}

// valueExpr renders the value column of a rule with the builder's type.
func (b Builder) valueExpr(r rules.Rule) string {
	switch r := r.(type) {
	case rules.FilteredField:
		if b.ValueType == rules.Text {
			if r.Field == b.ValueColumn {
				return quoteIdent(r.Field)
			}
			return quoteIdent(r.Field) + " AS " + alias(b.ValueColumn)
		}
		return b.cast(quoteIdent(r.Field))

	case rules.MappedValue:
		return b.cast(quoteIdent(r.Field))

	case rules.ConstantValue:
		v := strconv.FormatFloat(r.Value, 'f', -1, 64)
		if b.ValueType == rules.Text {
			return quoteLiteral(v) + " AS " + alias(b.ValueColumn)
		}
		return b.cast(v)
	}
	panic("query: unknown rule type")
}

func (b Builder) cast(expr string) string {
	return "CAST(" + expr + " AS " + b.ValueType.String() + ") AS " + alias(b.ValueColumn)
}

// alias leaves plain identifiers bare and quotes anything else.
func alias(name string) string {
	if name == "" {
		return quoteIdent(name)
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return quoteIdent(name)
		}
	}
	return name
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
