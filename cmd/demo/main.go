package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/codegen"
	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/pipeline"
	"github.com/figaro-dev/figaro/pkg/provider"
	"github.com/figaro-dev/figaro/pkg/sandbox"
)

const sampleCSV = `product,revenue,units
widget,1200,30
gadget,950,12
doohickey,430,51
gizmo,2100,8
thingamajig,760,19
whatsit,310,44
`

func main() {
	fmt.Println("=== figaro pipeline demo ===")
	fmt.Println()

	// 1. Load the sample dataset.
	ds, err := dataset.ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		fmt.Printf("CSV parse FAILED: %v\n", err)
		return
	}
	fmt.Printf("[1] Dataset loaded: columns=%v rows=%d\n", ds.Columns(), ds.NumRows())

	// 2. A canned generator standing in for the model service. It returns
	// fenced code the way a real model does, imports and fig.show() included,
	// so the sanitizer has something to strip.
	gen := provider.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return "```js\n" +
			"import plotly from 'plotly';\n" +
			"sorted = df.sort_values('revenue', false).head(5)\n" +
			"fig = px.bar(sorted, {x: 'product', y: 'revenue', title: 'Top 5 by Revenue'})\n" +
			"fig.show()\n" +
			"```", nil
	})

	// 3. Show the intermediate stages before running the pipeline proper.
	raw, _ := gen.Generate(context.Background(), "")
	extracted := codegen.ExtractCode(raw)
	sanitized := codegen.Sanitize(extracted)
	fmt.Printf("\n[2] Model output:\n%s\n", raw)
	fmt.Printf("\n[3] Extracted fragment:\n%s\n", extracted)
	fmt.Printf("\n[4] Sanitized fragment (imports and fig.show() removed):\n%s\n", sanitized)

	// 4. Run the pipeline end to end.
	p := pipeline.New(gen, sandbox.NewLocal(sandbox.Config{}), nil)
	fig, err := p.GenerateChart(context.Background(), "show top 5 by revenue", ds)
	if err != nil {
		fmt.Printf("pipeline FAILED: %v\n", err)
		return
	}
	figJSON, _ := json.MarshalIndent(fig, "", "  ")
	fmt.Printf("\n[5] Figure JSON:\n%s\n", figJSON)

	// 5. A faulting fragment surfaces as an execution error carrying the
	// fragment source.
	badGen := provider.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		return "```js\nfig = px.bar(df, {x: 'nope', y: 'revenue'})\n```", nil
	})
	p2 := pipeline.New(badGen, sandbox.NewLocal(sandbox.Config{}), nil)
	_, err = p2.GenerateChart(context.Background(), "chart a missing column", ds)
	var chartErr *api.ChartError
	if errors.As(err, &chartErr) {
		fmt.Printf("\n[6] Execution error example:\n    type=%s\n    message=%s\n    fragment=%q\n",
			chartErr.Type, chartErr.Message, chartErr.Fragment)
	}

	// 6. Empty queries are rejected before any service call.
	_, err = p.GenerateChart(context.Background(), "   ", ds)
	fmt.Printf("\n[7] Empty query: %v\n", err)

	fmt.Println("\n=== demo complete ===")
}
