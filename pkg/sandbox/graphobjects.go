package sandbox

import (
	"github.com/dop251/goja"

	"github.com/figaro-dev/figaro/pkg/api"
)

// traceProp is the hidden property carrying the Go trace behind a trace
// object.
const traceProp = "__trace__"

// newGraphObjectsNamespace builds the 'go' binding: explicit figure and
// trace constructors in the style of plotly graph objects, for fragments
// that assemble charts trace by trace.
func newGraphObjectsNamespace(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()

	obj.Set("Figure", func(call goja.FunctionCall) goja.Value {
		fig := api.NewFigure()
		if opts, ok := call.Argument(0).(*goja.Object); ok {
			if data := optValue(opts, "data"); data != nil {
				appendTraces(vm, fig, data)
			}
			if layout, ok := optValue(opts, "layout").(*goja.Object); ok {
				applyLayout(fig, layout)
			}
		}
		return newFigureObject(vm, fig)
	})

	obj.Set("Bar", traceConstructor(vm, "bar", ""))
	obj.Set("Scatter", traceConstructor(vm, "scatter", "lines+markers"))
	obj.Set("Pie", traceConstructor(vm, "pie", ""))

	return obj
}

// traceConstructor builds a trace constructor for the given type.
func traceConstructor(vm *goja.Runtime, traceType, defaultMode string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		t := &api.Trace{Type: traceType, Mode: defaultMode}
		if opts, ok := call.Argument(0).(*goja.Object); ok {
			if v := optValue(opts, "x"); v != nil {
				t.X = resolveSeries(vm, nil, v)
			}
			if v := optValue(opts, "y"); v != nil {
				t.Y = resolveSeries(vm, nil, v)
			}
			if v := optValue(opts, "labels"); v != nil {
				t.Labels = resolveSeries(vm, nil, v)
			}
			if v := optValue(opts, "values"); v != nil {
				t.Values = resolveSeries(vm, nil, v)
			}
			if name := optString(opts, "name"); name != "" {
				t.Name = name
			}
			if mode := optString(opts, "mode"); mode != "" {
				t.Mode = mode
			}
			if o := optString(opts, "orientation"); o != "" {
				t.Orientation = o
			}
			if color := optString(opts, "marker_color"); color != "" {
				t.Marker = &api.Marker{Color: color}
			}
		}
		return newTraceObject(vm, t)
	}
}

// newTraceObject wraps a trace for later add_trace / go.Figure use.
func newTraceObject(vm *goja.Runtime, t *api.Trace) *goja.Object {
	obj := vm.NewObject()
	obj.DefineDataProperty(traceProp, vm.ToValue(t),
		goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return obj
}

// traceFromValue recovers the trace behind a trace object.
func traceFromValue(v goja.Value) (*api.Trace, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	p := obj.Get(traceProp)
	if p == nil {
		return nil, false
	}
	t, ok := p.Export().(*api.Trace)
	return t, ok
}

// appendTraces adds every trace in a JS array (or a single trace) to the
// figure.
func appendTraces(vm *goja.Runtime, fig *api.Figure, data goja.Value) {
	if t, ok := traceFromValue(data); ok {
		fig.AddTrace(*t)
		return
	}
	obj, ok := data.(*goja.Object)
	if !ok {
		panic(vm.ToValue("Figure: data must be a trace or an array of traces"))
	}
	length := int(obj.Get("length").ToInteger())
	for i := 0; i < length; i++ {
		el := obj.Get(vm.ToValue(i).String())
		t, ok := traceFromValue(el)
		if !ok {
			panic(vm.ToValue("Figure: data array must contain trace objects"))
		}
		fig.AddTrace(*t)
	}
}

// applyLayout maps a layout options object onto the figure layout.
func applyLayout(fig *api.Figure, layout *goja.Object) {
	if title := optString(layout, "title"); title != "" {
		fig.Layout.Title = &api.Title{Text: title}
	}
	if xt := optString(layout, "xaxis_title"); xt != "" {
		fig.Layout.XAxis = &api.Axis{Title: &api.Title{Text: xt}}
	}
	if yt := optString(layout, "yaxis_title"); yt != "" {
		fig.Layout.YAxis = &api.Axis{Title: &api.Title{Text: yt}}
	}
	if bm := optString(layout, "barmode"); bm != "" {
		fig.Layout.BarMode = bm
	}
}
