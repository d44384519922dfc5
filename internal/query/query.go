// Package query filters events with CEL expressions.
//
// An expression sees the variables id, type, stream (strings), position and
// created_at_ms (ints) and data, metadata (the decoded JSON payloads), and
// must evaluate to a bool:
//
//	type == "OrderPlaced" && data.total > 100.0
//
// An event whose payload lacks a field the expression selects does not
// match; it is not an error. Filtering runs on the events a read already
// returned. It never moves a
// cursor, so a filtered window may hold fewer events than were asked for.
package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

// Filter is a compiled event predicate. The zero value matches everything.
type Filter struct {
	prog cel.Program
}

// Compile parses and type-checks expr. An empty expression yields a Filter
// that matches every event.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("stream", cel.StringType),
		cel.Variable("position", cel.IntType),
		cel.Variable("created_at_ms", cel.IntType),
		cel.Variable("data", cel.DynType),
		cel.Variable("metadata", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("parsing filter: %w", iss.Err())
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("checking filter: %w", iss.Err())
	}
	if !checked.OutputType().IsExactType(cel.BoolType) && !checked.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", checked.OutputType())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("building filter program: %w", err)
	}
	return &Filter{prog: prog}, nil
}

// Match reports whether e satisfies the filter.
func (f *Filter) Match(e event.Event) (bool, error) {
	if f == nil || f.prog == nil {
		return true, nil
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":            e.ID,
		"type":          e.Type,
		"stream":        e.Stream,
		"position":      int64(e.Position),
		"created_at_ms": e.CreatedAt.UnixMilli(),
		"data":          decode(e.Data),
		"metadata":      decode(e.Metadata),
	})
	if err != nil {
		if isMissingField(err) {
			return false, nil
		}
		return false, fmt.Errorf("evaluating filter on %s: %w", e.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter on %s returned %T, want bool", e.ID, out.Value())
	}
	return b, nil
}

// Apply returns the events of in that match, preserving order.
func (f *Filter) Apply(in []event.Event) ([]event.Event, error) {
	if f == nil || f.prog == nil {
		return in, nil
	}
	out := make([]event.Event, 0, len(in))
	for _, e := range in {
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func decode(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]any{}
	}
	return v
}

// isMissingField reports whether err comes from selecting a key or attribute
// the payload does not have. CEL reports these only as error text.
func isMissingField(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such key") || strings.Contains(msg, "no such attribute")
}
