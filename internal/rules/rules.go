// Package rules holds the per-layer extraction rules and the two processing
// modes built from them.
package rules

import (
	"errors"
	"fmt"
	"strconv"
)

// Rule is the extraction policy for one layer. It is one of FilteredField,
// MappedValue or ConstantValue.
type Rule interface {
	// LayerName is the exact layer the rule applies to.
	LayerName() string
	// RequiredField is the field the layer must carry to be eligible.
	RequiredField() (string, bool)
	isRule()
}

// FilteredField emits the rows of Layer whose text field Field is set,
// carrying the field's value.
type FilteredField struct {
	Layer string
	Field string
}

// MappedValue emits the rows of Layer whose field Field is set, carrying the
// field's value as a real number.
type MappedValue struct {
	Layer string
	Field string
}

// ConstantValue emits every row of Layer with Value in place of a field.
type ConstantValue struct {
	Layer string
	Value float64
}

func (r FilteredField) LayerName() string             { return r.Layer }
func (r FilteredField) RequiredField() (string, bool) { return r.Field, true }
func (FilteredField) isRule()                         {}

func (r MappedValue) LayerName() string             { return r.Layer }
func (r MappedValue) RequiredField() (string, bool) { return r.Field, true }
func (MappedValue) isRule()                         {}

func (r ConstantValue) LayerName() string             { return r.Layer }
func (r ConstantValue) RequiredField() (string, bool) { return "", false }
func (ConstantValue) isRule()                         {}

func (r FilteredField) String() string { return fmt.Sprintf("%s: %s", r.Layer, r.Field) }
func (r MappedValue) String() string   { return fmt.Sprintf("%s: real(%s)", r.Layer, r.Field) }
func (r ConstantValue) String() string {
	return fmt.Sprintf("%s: %s", r.Layer, strconv.FormatFloat(r.Value, 'f', -1, 64))
}

// Table maps layer names to rules and keeps the order rules were added in.
// It is not modified after construction.
type Table struct {
	rules  []Rule
	byName map[string]Rule
}

// ErrDuplicateLayer is returned by NewTable for a layer named twice.
var ErrDuplicateLayer = errors.New("duplicate layer rule")

// NewTable builds a table from rules, in order.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{
		rules:  make([]Rule, 0, len(rules)),
		byName: make(map[string]Rule, len(rules)),
	}
	for _, r := range rules {
		name := r.LayerName()
		if name == "" {
			return nil, errors.New("rule with empty layer name")
		}
		if field, ok := r.RequiredField(); ok && field == "" {
			return nil, fmt.Errorf("layer %s: rule with empty field name", name)
		}
		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLayer, name)
		}
		t.byName[name] = r
		t.rules = append(t.rules, r)
	}
	return t, nil
}

// RuleFor returns the rule for the exact layer name.
func (t *Table) RuleFor(name string) (Rule, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Rules returns the rules in table order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }
