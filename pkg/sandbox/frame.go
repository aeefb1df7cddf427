package sandbox

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/figaro-dev/figaro/pkg/dataset"
)

// frameProp is the hidden property carrying the Go dataset behind a
// frame object, so chart constructors can recover it from a JS value.
const frameProp = "__frame__"

// newFrameObject builds the 'df' binding: a JS object exposing a small
// pandas-flavored surface over the read-only dataset. Every frame
// operation returns a new frame object; the underlying dataset is never
// mutated.
func newFrameObject(vm *goja.Runtime, ds *dataset.Dataset) *goja.Object {
	obj := vm.NewObject()
	obj.Set("columns", ds.Columns())
	obj.Set("length", ds.NumRows())

	obj.Set("sort_values", func(call goja.FunctionCall) goja.Value {
		col := argString(vm, call, 0, "sort_values: column name required")
		ascending := true
		if len(call.Arguments) > 1 {
			ascending = call.Arguments[1].ToBoolean()
		}
		sorted, err := ds.SortValues(col, ascending)
		if err != nil {
			throw(vm, err)
		}
		return newFrameObject(vm, sorted)
	})

	obj.Set("head", func(call goja.FunctionCall) goja.Value {
		return newFrameObject(vm, ds.Head(argInt(call, 0, 5)))
	})

	obj.Set("tail", func(call goja.FunctionCall) goja.Value {
		return newFrameObject(vm, ds.Tail(argInt(call, 0, 5)))
	})

	obj.Set("groupby", func(call goja.FunctionCall) goja.Value {
		key := argString(vm, call, 0, "groupby: key column required")
		value := argString(vm, call, 1, "groupby: value column required")
		agg := dataset.AggSum
		if len(call.Arguments) > 2 {
			agg = call.Arguments[2].String()
		}
		grouped, err := ds.GroupBy(key, value, agg)
		if err != nil {
			throw(vm, err)
		}
		return newFrameObject(vm, grouped)
	})

	obj.Set("column", func(call goja.FunctionCall) goja.Value {
		name := argString(vm, call, 0, "column: name required")
		values, err := ds.Column(name)
		if err != nil {
			throw(vm, err)
		}
		return vm.ToValue(values)
	})

	obj.Set("unique", func(call goja.FunctionCall) goja.Value {
		name := argString(vm, call, 0, "unique: column name required")
		values, err := ds.Unique(name)
		if err != nil {
			throw(vm, err)
		}
		return vm.ToValue(values)
	})

	obj.Set("filter", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			throw(vm, fmt.Errorf("filter: predicate function required"))
		}
		cols := ds.Columns()
		filtered := ds.Filter(func(row []any) bool {
			rec := vm.NewObject()
			for i, c := range cols {
				rec.Set(c, row[i])
			}
			v, err := fn(goja.Undefined(), rec)
			if err != nil {
				panic(err)
			}
			return v.ToBoolean()
		})
		return newFrameObject(vm, filtered)
	})

	obj.DefineDataProperty(frameProp, vm.ToValue(ds),
		goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return obj
}

// frameFromValue recovers the dataset behind a frame object. Returns
// false for anything that is not a frame.
func frameFromValue(v goja.Value) (*dataset.Dataset, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	p := obj.Get(frameProp)
	if p == nil {
		return nil, false
	}
	ds, ok := p.Export().(*dataset.Dataset)
	return ds, ok
}

// throw raises a Go error as a JS exception inside the VM.
func throw(vm *goja.Runtime, err error) {
	panic(vm.ToValue(err.Error()))
}

// argString returns string argument i or throws with msg when absent.
func argString(vm *goja.Runtime, call goja.FunctionCall, i int, msg string) string {
	if len(call.Arguments) <= i || goja.IsUndefined(call.Arguments[i]) {
		panic(vm.ToValue(msg))
	}
	return call.Arguments[i].String()
}

// argInt returns integer argument i or the default when absent.
func argInt(call goja.FunctionCall, i, def int) int {
	if len(call.Arguments) <= i || goja.IsUndefined(call.Arguments[i]) {
		return def
	}
	return int(call.Arguments[i].ToInteger())
}
