package sandbox

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
)

// newExpressNamespace builds the 'px' binding: one-call chart
// constructors in the style of plotly express. Each takes a frame (or
// nothing) plus an options object and returns a complete figure object.
func newExpressNamespace(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()
	obj.Set("bar", xyConstructor(vm, "bar", ""))
	obj.Set("line", xyConstructor(vm, "scatter", "lines"))
	obj.Set("scatter", xyConstructor(vm, "scatter", "markers"))
	obj.Set("histogram", func(call goja.FunctionCall) goja.Value {
		ds, opts := chartArgs(vm, call)
		fig := api.NewFigure()
		fig.AddTrace(api.Trace{
			Type: "histogram",
			X:    seriesOpt(vm, ds, opts, "x"),
		})
		applyCommonLayout(fig, ds, opts)
		return newFigureObject(vm, fig)
	})
	obj.Set("pie", func(call goja.FunctionCall) goja.Value {
		ds, opts := chartArgs(vm, call)
		fig := api.NewFigure()
		fig.AddTrace(api.Trace{
			Type:   "pie",
			Labels: seriesOpt(vm, ds, opts, "names"),
			Values: seriesOpt(vm, ds, opts, "values"),
		})
		if title := optString(opts, "title"); title != "" {
			fig.SetTitle(title)
		}
		return newFigureObject(vm, fig)
	})
	return obj
}

// xyConstructor builds a px chart function for x/y trace types. When the
// options include a 'color' column, one trace is emitted per distinct
// color value, grouped bar mode.
func xyConstructor(vm *goja.Runtime, traceType, mode string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		ds, opts := chartArgs(vm, call)
		fig := api.NewFigure()

		colorCol := optString(opts, "color")
		if colorCol != "" && ds != nil {
			addGroupedTraces(vm, fig, ds, opts, traceType, mode, colorCol)
		} else {
			fig.AddTrace(api.Trace{
				Type:        traceType,
				Mode:        mode,
				X:           seriesOpt(vm, ds, opts, "x"),
				Y:           seriesOpt(vm, ds, opts, "y"),
				Orientation: optString(opts, "orientation"),
			})
		}

		applyCommonLayout(fig, ds, opts)
		return newFigureObject(vm, fig)
	}
}

// addGroupedTraces emits one trace per distinct value of the color column.
func addGroupedTraces(vm *goja.Runtime, fig *api.Figure, ds *dataset.Dataset, opts *goja.Object, traceType, mode, colorCol string) {
	groups, err := ds.Unique(colorCol)
	if err != nil {
		throw(vm, err)
	}
	cols := ds.Columns()
	colorIdx := -1
	for i, c := range cols {
		if c == colorCol {
			colorIdx = i
		}
	}
	for _, g := range groups {
		sub := ds.Filter(func(row []any) bool { return row[colorIdx] == g })
		fig.AddTrace(api.Trace{
			Type: traceType,
			Mode: mode,
			Name: fmt.Sprintf("%v", g),
			X:    seriesOpt(vm, sub, opts, "x"),
			Y:    seriesOpt(vm, sub, opts, "y"),
		})
	}
	if traceType == "bar" {
		fig.Layout.BarMode = "group"
	}
}

// chartArgs splits the (frame?, options) argument shapes px accepts:
// px.bar(df, {...}), px.bar({...}), px.bar(df).
func chartArgs(vm *goja.Runtime, call goja.FunctionCall) (*dataset.Dataset, *goja.Object) {
	empty := vm.NewObject()
	if len(call.Arguments) == 0 {
		return nil, empty
	}
	if ds, ok := frameFromValue(call.Arguments[0]); ok {
		if len(call.Arguments) > 1 {
			if opts, ok := call.Arguments[1].(*goja.Object); ok {
				return ds, opts
			}
		}
		return ds, empty
	}
	if opts, ok := call.Arguments[0].(*goja.Object); ok {
		return nil, opts
	}
	return nil, empty
}

// seriesOpt resolves a data series option: a column name (looked up in
// the frame) or a literal array. Missing options yield nil.
func seriesOpt(vm *goja.Runtime, ds *dataset.Dataset, opts *goja.Object, key string) []any {
	v := optValue(opts, key)
	if v == nil {
		return nil
	}
	return resolveSeries(vm, ds, v)
}

// resolveSeries converts a JS value into a column of data.
func resolveSeries(vm *goja.Runtime, ds *dataset.Dataset, v goja.Value) []any {
	if arr, ok := v.Export().([]any); ok {
		return arr
	}
	name := v.String()
	if ds == nil {
		panic(vm.ToValue(fmt.Sprintf("column %q referenced without a data frame", name)))
	}
	values, err := ds.Column(name)
	if err != nil {
		throw(vm, err)
	}
	return values
}

// applyCommonLayout sets the title and axis titles from the options. Axis
// titles default to the referenced column names when x/y are names.
func applyCommonLayout(fig *api.Figure, ds *dataset.Dataset, opts *goja.Object) {
	if title := optString(opts, "title"); title != "" {
		fig.SetTitle(title)
	}
	if ds == nil {
		return
	}
	if x := optString(opts, "x"); x != "" && ds.HasColumn(x) {
		fig.Layout.XAxis = &api.Axis{Title: &api.Title{Text: x}}
	}
	if y := optString(opts, "y"); y != "" && ds.HasColumn(y) {
		fig.Layout.YAxis = &api.Axis{Title: &api.Title{Text: y}}
	}
}
