package sandbox

import (
	"github.com/dop251/goja"

	"github.com/figaro-dev/figaro/pkg/api"
)

// figureProp is the hidden property carrying the Go figure behind a
// figure object.
const figureProp = "__figure__"

// newFigureObject wraps a figure in a JS object with the small mutation
// surface generated fragments use: add_trace and update_layout. There is
// deliberately no show(): the sanitizer strips those calls, and in the
// headless sandbox an overlooked one fails loudly rather than silently.
func newFigureObject(vm *goja.Runtime, fig *api.Figure) *goja.Object {
	obj := vm.NewObject()

	obj.Set("add_trace", func(call goja.FunctionCall) goja.Value {
		t, ok := traceFromValue(call.Argument(0))
		if !ok {
			panic(vm.ToValue("add_trace: trace object required"))
		}
		fig.AddTrace(*t)
		return obj
	})

	obj.Set("update_layout", func(call goja.FunctionCall) goja.Value {
		opts, ok := call.Argument(0).(*goja.Object)
		if !ok {
			panic(vm.ToValue("update_layout: options object required"))
		}
		if title := optString(opts, "title"); title != "" {
			fig.Layout.Title = &api.Title{Text: title}
		}
		if xt := optString(opts, "xaxis_title"); xt != "" {
			fig.Layout.XAxis = &api.Axis{Title: &api.Title{Text: xt}}
		}
		if yt := optString(opts, "yaxis_title"); yt != "" {
			fig.Layout.YAxis = &api.Axis{Title: &api.Title{Text: yt}}
		}
		if bm := optString(opts, "barmode"); bm != "" {
			fig.Layout.BarMode = bm
		}
		return obj
	})

	obj.DefineDataProperty(figureProp, vm.ToValue(fig),
		goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return obj
}

// figureFromValue recovers the figure behind a JS value: either a figure
// object built by the chart namespaces or a directly exported *api.Figure.
func figureFromValue(v goja.Value) (*api.Figure, bool) {
	if fig, ok := v.Export().(*api.Figure); ok {
		return fig, true
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	p := obj.Get(figureProp)
	if p == nil {
		return nil, false
	}
	fig, ok := p.Export().(*api.Figure)
	return fig, ok
}

// optString reads a string option, returning "" when absent.
func optString(opts *goja.Object, key string) string {
	v := opts.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// optValue reads a raw option value, returning nil when absent.
func optValue(opts *goja.Object, key string) goja.Value {
	v := opts.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v
}
