package sandbox

import (
	"math"
	"strconv"

	"github.com/dop251/goja"
)

// newTabularNamespace builds the 'pd' binding: small tabular helpers
// generated fragments reach for out of habit.
func newTabularNamespace(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()

	obj.Set("to_numeric", func(call goja.FunctionCall) goja.Value {
		values := exportArray(vm, call.Argument(0), "to_numeric")
		out := make([]any, len(values))
		for i, v := range values {
			if f, ok := toFloat(v); ok {
				out[i] = f
			}
		}
		return vm.ToValue(out)
	})

	obj.Set("unique", func(call goja.FunctionCall) goja.Value {
		values := exportArray(vm, call.Argument(0), "unique")
		seen := make(map[any]bool)
		var out []any
		for _, v := range values {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
		return vm.ToValue(out)
	})

	obj.Set("concat", func(call goja.FunctionCall) goja.Value {
		var out []any
		for i, arg := range call.Arguments {
			out = append(out, exportArray(vm, arg, "concat argument "+strconv.Itoa(i))...)
		}
		return vm.ToValue(out)
	})

	return obj
}

// newNumericNamespace builds the 'np' binding: numeric array helpers.
func newNumericNamespace(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()

	obj.Set("sum", reduceFn(vm, "sum", func(acc, f float64, n int) float64 { return acc + f }))
	obj.Set("mean", func(call goja.FunctionCall) goja.Value {
		fs := numericValues(vm, call.Argument(0), "mean")
		if len(fs) == 0 {
			return vm.ToValue(math.NaN())
		}
		var sum float64
		for _, f := range fs {
			sum += f
		}
		return vm.ToValue(sum / float64(len(fs)))
	})
	obj.Set("min", func(call goja.FunctionCall) goja.Value {
		fs := numericValues(vm, call.Argument(0), "min")
		if len(fs) == 0 {
			return vm.ToValue(math.NaN())
		}
		out := fs[0]
		for _, f := range fs[1:] {
			out = math.Min(out, f)
		}
		return vm.ToValue(out)
	})
	obj.Set("max", func(call goja.FunctionCall) goja.Value {
		fs := numericValues(vm, call.Argument(0), "max")
		if len(fs) == 0 {
			return vm.ToValue(math.NaN())
		}
		out := fs[0]
		for _, f := range fs[1:] {
			out = math.Max(out, f)
		}
		return vm.ToValue(out)
	})

	obj.Set("abs", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(math.Abs(call.Argument(0).ToFloat()))
	})

	obj.Set("round", func(call goja.FunctionCall) goja.Value {
		f := call.Argument(0).ToFloat()
		digits := argInt(call, 1, 0)
		scale := math.Pow(10, float64(digits))
		return vm.ToValue(math.Round(f*scale) / scale)
	})

	obj.Set("arange", func(call goja.FunctionCall) goja.Value {
		start := call.Argument(0).ToFloat()
		stop := start
		step := 1.0
		if len(call.Arguments) > 1 {
			stop = call.Argument(1).ToFloat()
		} else {
			start = 0
		}
		if len(call.Arguments) > 2 {
			step = call.Argument(2).ToFloat()
		}
		if step == 0 {
			panic(vm.ToValue("arange: step must not be zero"))
		}
		var out []any
		for v := start; (step > 0 && v < stop) || (step < 0 && v > stop); v += step {
			out = append(out, v)
		}
		return vm.ToValue(out)
	})

	return obj
}

// reduceFn builds a fold over the numeric values of an array argument.
func reduceFn(vm *goja.Runtime, name string, fold func(acc, f float64, n int) float64) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		fs := numericValues(vm, call.Argument(0), name)
		var acc float64
		for i, f := range fs {
			acc = fold(acc, f, i)
		}
		return vm.ToValue(acc)
	}
}

// numericValues extracts the numeric entries of an array argument,
// skipping anything non-numeric.
func numericValues(vm *goja.Runtime, v goja.Value, name string) []float64 {
	values := exportArray(vm, v, name)
	var out []float64
	for _, e := range values {
		if f, ok := toFloat(e); ok {
			out = append(out, f)
		}
	}
	return out
}

// exportArray exports a JS array argument, throwing when the value is
// not an array.
func exportArray(vm *goja.Runtime, v goja.Value, name string) []any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		panic(vm.ToValue(name + ": array argument required"))
	}
	arr, ok := v.Export().([]any)
	if !ok {
		panic(vm.ToValue(name + ": array argument required"))
	}
	return arr
}

// toFloat coerces cell values (numbers, numeric strings) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
