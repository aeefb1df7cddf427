package codegen

import (
	"fmt"
	"strings"
)

// BuildChartPrompt constructs the instruction text for the code-generation
// model. The template constrains the output shape: only the px/go chart
// namespaces, result bound to 'fig', no imports, no fig.show(), and the
// dataset referenced as 'df'. Columns may be empty.
func BuildChartPrompt(query string, columns []string) string {
	return fmt.Sprintf(
		"Generate only executable JavaScript for a plotly chart. "+
			"Task: %s\n"+
			"Available columns: %s\n"+
			"Requirements:\n"+
			"1. Only use the plotly express namespace (px) or the graph objects namespace (go)\n"+
			"2. Name the figure variable 'fig' and assign it without let/const/var\n"+
			"3. Don't include imports or fig.show()\n"+
			"4. Use 'df' as the DataFrame name\n"+
			"Example format:\n"+
			"filtered = df.sort_values('column', false).head(10)\n"+
			"fig = px.bar(filtered, {x: 'column1', y: 'column2', title: 'Chart Title'})",
		query, formatColumns(columns),
	)
}

// BuildEnhancedPrompt constructs a meta-prompt asking the model to rewrite
// the user's query into a better-specified analytical question over the
// same column list.
func BuildEnhancedPrompt(query string, columns []string) string {
	return fmt.Sprintf(
		"Based on the following user query and available columns %s, "+
			"generate a clear, specific prompt that would help get better results. "+
			"Consider data analysis best practices and focus on actionable insights.\n"+
			"User query: %s",
		formatColumns(columns), query,
	)
}

// formatColumns renders a column list as a literal array, e.g.
// ["product", "revenue"]. An empty list renders as [].
func formatColumns(columns []string) string {
	if len(columns) == 0 {
		return "[]"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
