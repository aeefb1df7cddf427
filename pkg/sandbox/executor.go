package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
)

// resultName is the fixed variable the fragment must bind its figure to.
const resultName = "fig"

// defaultMaxCallStackSize limits VM call stack depth to stop runaway
// recursion in generated fragments.
const defaultMaxCallStackSize = 500

// Executor runs a sanitized code fragment against a dataset and returns
// the produced figure. Implementations exist for in-process execution
// (Local) and for execution on a remote sandbox server (remote package).
type Executor interface {
	Execute(ctx context.Context, fragment string, ds *dataset.Dataset) (*api.Figure, error)
}

// Config holds local executor settings.
type Config struct {
	// Timeout bounds a single execution. Zero disables the interrupt,
	// reproducing the original blocking contract: a fragment that loops
	// forever never returns.
	Timeout time.Duration

	// MaxCallStackSize limits VM call stack depth. Zero applies the default.
	MaxCallStackSize int
}

// Local executes fragments on an embedded goja VM in the current process.
// A Local value is stateless and safe for concurrent use; every call
// builds a fresh VM that is discarded afterwards, so no bindings leak
// across executions.
type Local struct {
	cfg Config
}

// NewLocal creates a local executor.
func NewLocal(cfg Config) *Local {
	if cfg.MaxCallStackSize <= 0 {
		cfg.MaxCallStackSize = defaultMaxCallStackSize
	}
	return &Local{cfg: cfg}
}

// Execute runs the fragment with the dataset bound as 'df'. Any runtime
// fault, a missing 'fig' binding, or a non-figure 'fig' value yields an
// execution error carrying the fault description and the fragment source.
func (e *Local) Execute(ctx context.Context, fragment string, ds *dataset.Dataset) (*api.Figure, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(e.cfg.MaxCallStackSize)

	bindGlobals(vm, ds)

	stop := watchInterrupt(ctx, vm, e.cfg.Timeout)
	defer stop()

	if _, err := vm.RunString(fragment); err != nil {
		return nil, api.NewExecutionError(faultMessage(err), fragment)
	}

	v := vm.Get(resultName)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, api.NewMissingFigureError(fragment)
	}

	fig, ok := figureFromValue(v)
	if !ok {
		return nil, api.NewExecutionError("'fig' is not a figure object", fragment)
	}
	return fig, nil
}

// bindGlobals installs the complete execution namespace: the dataset and
// the fixed allow-list of chart/computation handles. Nothing else.
func bindGlobals(vm *goja.Runtime, ds *dataset.Dataset) {
	vm.Set("df", newFrameObject(vm, ds))
	vm.Set("px", newExpressNamespace(vm))
	vm.Set("go", newGraphObjectsNamespace(vm))
	vm.Set("pd", newTabularNamespace(vm))
	vm.Set("np", newNumericNamespace(vm))
}

// watchInterrupt arms the wall-clock timeout and context cancellation for
// one execution. The returned func disarms both.
func watchInterrupt(ctx context.Context, vm *goja.Runtime, timeout time.Duration) func() {
	done := make(chan struct{})

	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt("execution timed out")
		})
		go func() {
			select {
			case <-ctx.Done():
				vm.Interrupt(ctx.Err().Error())
			case <-done:
			}
		}()
		return func() {
			timer.Stop()
			close(done)
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err().Error())
		case <-done:
		}
	}()
	return func() { close(done) }
}

// faultMessage renders a VM error as the fault description embedded in
// the execution error.
func faultMessage(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.Value().String()
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprintf("execution interrupted: %v", interrupted.Value())
	}
	return err.Error()
}
