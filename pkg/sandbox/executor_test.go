package sandbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]string{"product", "revenue", "units"},
		[][]any{
			{"widget", 1200.0, 30.0},
			{"gadget", 950.0, 12.0},
			{"doohickey", 430.0, 51.0},
			{"gizmo", 2100.0, 8.0},
			{"thingamajig", 760.0, 19.0},
			{"whatsit", 310.0, 44.0},
		},
	)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

func execFragment(t *testing.T, fragment string) (*api.Figure, error) {
	t.Helper()
	exec := NewLocal(Config{})
	return exec.Execute(context.Background(), fragment, testDataset(t))
}

func TestExecute_BarChart(t *testing.T) {
	fig, err := execFragment(t, "fig = px.bar(df, {x: 'product', y: 'revenue', title: 'Revenue'})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fig.Data) != 1 {
		t.Fatalf("traces = %d, want 1", len(fig.Data))
	}
	tr := fig.Data[0]
	if tr.Type != "bar" {
		t.Errorf("trace type = %q, want bar", tr.Type)
	}
	if len(tr.X) != 6 || len(tr.Y) != 6 {
		t.Errorf("series lengths = %d/%d, want 6/6", len(tr.X), len(tr.Y))
	}
	if tr.X[0] != "widget" || tr.Y[0] != 1200.0 {
		t.Errorf("first point = (%v, %v)", tr.X[0], tr.Y[0])
	}
	if fig.Layout.Title == nil || fig.Layout.Title.Text != "Revenue" {
		t.Errorf("title = %+v", fig.Layout.Title)
	}
}

func TestExecute_SortAndHead(t *testing.T) {
	fig, err := execFragment(t,
		"top = df.sort_values('revenue', false).head(2)\n"+
			"fig = px.bar(top, {x: 'product', y: 'revenue'})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	tr := fig.Data[0]
	if len(tr.X) != 2 {
		t.Fatalf("series length = %d, want 2", len(tr.X))
	}
	if tr.X[0] != "gizmo" || tr.X[1] != "widget" {
		t.Errorf("order = %v, want [gizmo widget]", tr.X)
	}
}

func TestExecute_GraphObjects(t *testing.T) {
	fig, err := execFragment(t,
		"fig = go.Figure()\n"+
			"fig.add_trace(go.Bar({x: ['a', 'b'], y: [1, 2], name: 'first'}))\n"+
			"fig.update_layout({title: 'Built by hand', yaxis_title: 'count'})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fig.Data) != 1 || fig.Data[0].Name != "first" {
		t.Fatalf("traces = %+v", fig.Data)
	}
	if fig.Layout.Title == nil || fig.Layout.Title.Text != "Built by hand" {
		t.Errorf("title = %+v", fig.Layout.Title)
	}
	if fig.Layout.YAxis == nil || fig.Layout.YAxis.Title.Text != "count" {
		t.Errorf("yaxis = %+v", fig.Layout.YAxis)
	}
}

func TestExecute_GroupedColorTraces(t *testing.T) {
	ds, err := dataset.New(
		[]string{"quarter", "revenue", "region"},
		[][]any{
			{"Q1", 100.0, "east"},
			{"Q1", 80.0, "west"},
			{"Q2", 120.0, "east"},
			{"Q2", 95.0, "west"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	exec := NewLocal(Config{})
	fig, err := exec.Execute(context.Background(),
		"fig = px.bar(df, {x: 'quarter', y: 'revenue', color: 'region'})", ds)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fig.Data) != 2 {
		t.Fatalf("traces = %d, want one per region", len(fig.Data))
	}
	if fig.Layout.BarMode != "group" {
		t.Errorf("barmode = %q, want group", fig.Layout.BarMode)
	}
}

func TestExecute_PieChart(t *testing.T) {
	fig, err := execFragment(t, "fig = px.pie(df, {names: 'product', values: 'revenue'})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fig.Data[0].Type != "pie" {
		t.Errorf("trace type = %q, want pie", fig.Data[0].Type)
	}
	if len(fig.Data[0].Labels) != 6 {
		t.Errorf("labels = %v", fig.Data[0].Labels)
	}
}

func TestExecute_NumericHelpers(t *testing.T) {
	fig, err := execFragment(t,
		"total = np.sum(df.column('revenue'))\n"+
			"fig = go.Figure({data: [go.Bar({x: ['total'], y: [total]})]})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fig.Data[0].Y[0] != 5750.0 {
		t.Errorf("sum = %v, want 5750", fig.Data[0].Y[0])
	}
}

func TestExecute_TabularHelpers(t *testing.T) {
	fig, err := execFragment(t,
		"both = pd.concat(df.column('product'), pd.unique(['a', 'a', 'b']))\n"+
			"fig = go.Figure({data: [go.Bar({x: both, y: np.arange(both.length)})]})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	tr := fig.Data[0]
	if len(tr.X) != 8 {
		t.Fatalf("len(X) = %d, want 6 products + 2 unique", len(tr.X))
	}
	if tr.X[6] != "a" || tr.X[7] != "b" {
		t.Errorf("concatenated tail = %v, %v", tr.X[6], tr.X[7])
	}
}

func TestExecute_MissingFigure(t *testing.T) {
	_, err := execFragment(t, "x = 1 + 1")
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError, got %v", err)
	}
	if chartErr.Type != api.ErrorTypeExecution {
		t.Errorf("type = %q, want execution_error", chartErr.Type)
	}
	if !strings.Contains(chartErr.Message, "fig") {
		t.Errorf("message = %q, want mention of missing fig", chartErr.Message)
	}
	if chartErr.Fragment != "x = 1 + 1" {
		t.Errorf("fragment = %q", chartErr.Fragment)
	}
}

func TestExecute_FigNotAFigure(t *testing.T) {
	_, err := execFragment(t, "fig = 42")
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError, got %v", err)
	}
	if !strings.Contains(chartErr.Message, "not a figure") {
		t.Errorf("message = %q", chartErr.Message)
	}
}

func TestExecute_RuntimeFault(t *testing.T) {
	fragment := "fig = px.bar(df, {x: 'no_such_column', y: 'revenue'})"
	_, err := execFragment(t, fragment)
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError, got %v", err)
	}
	if chartErr.Type != api.ErrorTypeExecution {
		t.Errorf("type = %q", chartErr.Type)
	}
	if chartErr.Fragment != fragment {
		t.Errorf("fragment = %q, want the failing source", chartErr.Fragment)
	}
	if !strings.Contains(chartErr.Error(), "generated code:") {
		t.Errorf("Error() = %q, want embedded fragment", chartErr.Error())
	}
}

func TestExecute_Timeout(t *testing.T) {
	exec := NewLocal(Config{Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := exec.Execute(context.Background(), "while (true) {}", testDataset(t))
	if time.Since(start) > 5*time.Second {
		t.Fatal("interrupt did not fire promptly")
	}
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError, got %v", err)
	}
	if !strings.Contains(chartErr.Message, "interrupted") {
		t.Errorf("message = %q, want interrupt notice", chartErr.Message)
	}
}

func TestExecute_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	exec := NewLocal(Config{})
	_, err := exec.Execute(ctx, "while (true) {}", testDataset(t))
	if err == nil {
		t.Fatal("expected an error from cancelled execution")
	}
}

func TestExecute_NamespaceIsolation(t *testing.T) {
	exec := NewLocal(Config{})
	ds := testDataset(t)

	_, err := exec.Execute(context.Background(),
		"leaked = 'value'\nfig = px.bar(df, {x: 'product', y: 'revenue'})", ds)
	if err != nil {
		t.Fatalf("first execution: %v", err)
	}

	// A fresh VM per execution means 'leaked' must not resolve.
	_, err = exec.Execute(context.Background(),
		"fig = px.bar(df, {x: 'product', y: [leaked]})", ds)
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError from leaked reference, got %v", err)
	}
}

func TestExecute_Concurrent(t *testing.T) {
	exec := NewLocal(Config{})
	ds := testDataset(t)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := exec.Execute(context.Background(),
				"fig = px.bar(df, {x: 'product', y: 'revenue'})", ds)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent execution: %v", err)
		}
	}
}

func TestExecute_CallStackLimit(t *testing.T) {
	exec := NewLocal(Config{MaxCallStackSize: 50})
	_, err := exec.Execute(context.Background(),
		"function recurse() { return recurse(); }\nfig = recurse()", testDataset(t))
	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected ChartError from stack overflow, got %v", err)
	}
}

func TestExecute_FilterPredicate(t *testing.T) {
	fig, err := execFragment(t,
		"big = df.filter(function(row) { return row.revenue > 900 })\n"+
			"fig = px.bar(big, {x: 'product', y: 'revenue'})")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fig.Data[0].X) != 3 {
		t.Errorf("filtered rows = %d, want 3", len(fig.Data[0].X))
	}
}

func TestExecute_GroupBy(t *testing.T) {
	ds, err := dataset.New(
		[]string{"region", "revenue"},
		[][]any{
			{"east", 100.0},
			{"west", 80.0},
			{"east", 50.0},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	exec := NewLocal(Config{})
	fig, err := exec.Execute(context.Background(),
		"grouped = df.groupby('region', 'revenue')\n"+
			"fig = px.bar(grouped, {x: 'region', y: 'revenue'})", ds)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fig.Data[0].X) != 2 {
		t.Fatalf("groups = %d, want 2", len(fig.Data[0].X))
	}
}
