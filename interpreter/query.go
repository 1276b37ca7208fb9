package interpreter

import (
	"fmt"
	"sort"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// evalQuery runs a query's full pipeline: cross product of sources, let bindings, with/without
// relationship filters, where, exactly one of aggregate or return, and sort, in that order.
func (terp *interpreter) evalQuery(q *model.Query) (result.Value, error) {
	sources := make([][]result.Value, len(q.Source))
	for i, src := range q.Source {
		v, err := terp.evalExpression(src.Source)
		if err != nil {
			return result.Value{}, err
		}
		if result.IsNull(v) {
			sources[i] = nil
			continue
		}
		items, err := result.ToSlice(v)
		if err != nil {
			return result.Value{}, err
		}
		sources[i] = items
	}

	rows := crossProduct(q.Source, sources)

	var aggregateAcc result.Value
	if q.Aggregate != nil {
		v, err := terp.evalExpression(q.Aggregate.Starting)
		if err != nil {
			return result.Value{}, err
		}
		aggregateAcc = v
	}

	var out []result.Value
	for _, row := range rows {
		kept, rowValue, err := terp.evalQueryRow(q, row, aggregateAcc)
		if err != nil {
			return result.Value{}, err
		}
		if !kept {
			continue
		}
		if q.Aggregate != nil {
			aggregateAcc = rowValue
			continue
		}
		out = append(out, rowValue)
	}

	if q.Aggregate != nil {
		return aggregateAcc, nil
	}

	if q.Return != nil && q.Return.Distinct {
		out = terp.distinctValues(out)
	}

	if q.Sort != nil {
		sorted, err := terp.sortRows(out, q.Sort.ByItems)
		if err != nil {
			return result.Value{}, err
		}
		out = sorted
	}
	return result.New(result.List{Value: out})
}

// evalQueryRow binds one cross product row's aliases and let clauses, applies its relationship
// and where filters, and returns whether the row survives along with the value it contributes:
// the aggregate's next accumulator value, the return projection, or (with neither clause) the
// row's own value (a bare Value for a single source query, a Tuple of aliases otherwise).
func (terp *interpreter) evalQueryRow(q *model.Query, row map[string]result.Value, aggregateAcc result.Value) (bool, result.Value, error) {
	terp.refs.EnterScope()
	defer terp.refs.ExitScope()

	for _, src := range q.Source {
		if err := terp.refs.Alias(src.Alias, evaluatedThunk(row[src.Alias])); err != nil {
			return false, result.Value{}, err
		}
	}
	for _, let := range q.Let {
		v, err := terp.evalExpression(let.Expression)
		if err != nil {
			return false, result.Value{}, err
		}
		if err := terp.refs.Alias(let.Identifier, evaluatedThunk(v)); err != nil {
			return false, result.Value{}, err
		}
	}

	for _, rel := range q.Relationship {
		matched, err := terp.evalRelationship(rel)
		if err != nil {
			return false, result.Value{}, err
		}
		switch rel.(type) {
		case *model.With:
			if !matched {
				return false, result.Value{}, nil
			}
		case *model.Without:
			if matched {
				return false, result.Value{}, nil
			}
		default:
			return false, result.Value{}, fmt.Errorf("internal error - unsupported relationship clause %T", rel)
		}
	}

	if q.Where != nil {
		w, err := terp.evalExpression(q.Where)
		if err != nil {
			return false, result.Value{}, err
		}
		b, err := asKleeneBool(w)
		if err != nil {
			return false, result.Value{}, err
		}
		if b == nil || !*b {
			return false, result.Value{}, nil
		}
	}

	switch {
	case q.Aggregate != nil:
		terp.refs.EnterScope()
		defer terp.refs.ExitScope()
		if err := terp.refs.Alias(q.Aggregate.Identifier, evaluatedThunk(aggregateAcc)); err != nil {
			return false, result.Value{}, err
		}
		v, err := terp.evalExpression(q.Aggregate.Expression)
		return true, v, err
	case q.Return != nil:
		v, err := terp.evalExpression(q.Return.Expression)
		return true, v, err
	default:
		return true, queryRowValue(q.Source, row), nil
	}
}

func queryRowValue(sources []*model.AliasedSource, row map[string]result.Value) result.Value {
	if len(sources) == 1 {
		return row[sources[0].Alias]
	}
	fields := make(map[string]result.Value, len(row))
	for k, v := range row {
		fields[k] = v
	}
	v, _ := result.New(result.Tuple{Value: fields, RuntimeType: types.Any})
	return v
}

// evalRelationship evaluates one With/Without clause against the row's already bound scope,
// returning whether at least one related row satisfies SuchThat.
func (terp *interpreter) evalRelationship(rel model.IRelationshipClause) (bool, error) {
	v, err := terp.evalExpression(rel.GetExpression())
	if err != nil {
		return false, err
	}
	if result.IsNull(v) {
		return false, nil
	}
	items, err := result.ToSlice(v)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		matched, err := func() (bool, error) {
			terp.refs.EnterScope()
			defer terp.refs.ExitScope()
			if err := terp.refs.Alias(rel.GetAlias(), evaluatedThunk(item)); err != nil {
				return false, err
			}
			if rel.GetSuchThat() == nil {
				return true, nil
			}
			st, err := terp.evalExpression(rel.GetSuchThat())
			if err != nil {
				return false, err
			}
			b, err := asKleeneBool(st)
			if err != nil {
				return false, err
			}
			return b != nil && *b, nil
		}()
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// crossProduct builds every combination of one element from each source, each combination a row
// keyed by alias. An empty source yields no rows; a query with no sources yields one empty row.
func crossProduct(aliases []*model.AliasedSource, sources [][]result.Value) []map[string]result.Value {
	rows := []map[string]result.Value{{}}
	for i, items := range sources {
		alias := aliases[i].Alias
		var next []map[string]result.Value
		for _, row := range rows {
			for _, item := range items {
				combined := make(map[string]result.Value, len(row)+1)
				for k, v := range row {
					combined[k] = v
				}
				combined[alias] = item
				next = append(next, combined)
			}
		}
		rows = next
	}
	return rows
}

func (terp *interpreter) distinctValues(vals []result.Value) []result.Value {
	var out []result.Value
	for _, v := range vals {
		dup := false
		for _, existing := range out {
			eq, err := terp.evalEquivalent(v, existing)
			if err == nil {
				if b, _ := result.ToBool(eq); b {
					dup = true
					break
				}
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func (terp *interpreter) sortRows(vals []result.Value, byItems []model.ISortByItem) ([]result.Value, error) {
	out := make([]result.Value, len(vals))
	copy(out, vals)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, item := range byItems {
			a, b := out[i], out[j]
			if col, ok := item.(*model.SortByColumn); ok {
				var err error
				a, err = terp.navigateProperty(a, col.Path, nil)
				if err != nil {
					sortErr = err
					return false
				}
				b, err = terp.navigateProperty(b, col.Path, nil)
				if err != nil {
					sortErr = err
					return false
				}
			}
			cmp, err := compareOrdered(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if item.GetDirection() == model.DESCENDING {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out, sortErr
}
