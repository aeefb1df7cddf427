package dataset

import "fmt"

// Aggregation names accepted by GroupBy.
const (
	AggSum   = "sum"
	AggMean  = "mean"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// GroupBy groups rows by the key column and aggregates the value column,
// returning a two-column dataset (key, value) with groups in first-seen
// order. Non-numeric values are skipped for sum/mean/min/max.
func (d *Dataset) GroupBy(key, value, agg string) (*Dataset, error) {
	ki, ok := d.colIndex[key]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", key)
	}
	vi := -1
	if agg != AggCount {
		vi, ok = d.colIndex[value]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", value)
		}
	}

	type acc struct {
		sum, min, max float64
		n             int
	}
	order := []any{}
	groups := map[any]*acc{}

	for _, r := range d.rows {
		k := r[ki]
		g, seen := groups[k]
		if !seen {
			g = &acc{}
			groups[k] = g
			order = append(order, k)
		}
		if agg == AggCount {
			g.n++
			continue
		}
		f, numeric := asFloat(r[vi])
		if !numeric {
			continue
		}
		if g.n == 0 || f < g.min {
			g.min = f
		}
		if g.n == 0 || f > g.max {
			g.max = f
		}
		g.sum += f
		g.n++
	}

	valueCol := value
	if agg == AggCount {
		valueCol = "count"
	}
	rows := make([][]any, 0, len(order))
	for _, k := range order {
		g := groups[k]
		var out float64
		switch agg {
		case AggSum:
			out = g.sum
		case AggMean:
			if g.n > 0 {
				out = g.sum / float64(g.n)
			}
		case AggCount:
			out = float64(g.n)
		case AggMin:
			out = g.min
		case AggMax:
			out = g.max
		default:
			return nil, fmt.Errorf("unknown aggregation %q", agg)
		}
		rows = append(rows, []any{k, out})
	}

	return New([]string{key, valueCol}, rows)
}
