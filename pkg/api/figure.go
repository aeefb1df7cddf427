package api

// Figure is the chart artifact produced by the sandbox executor. The JSON
// shape matches what plotly front ends consume directly: a list of traces
// plus a layout object.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single data series within a figure. Fields are a superset
// across trace types; unused fields are omitted from the JSON output.
type Trace struct {
	Type        string  `json:"type"`
	Name        string  `json:"name,omitempty"`
	X           []any   `json:"x,omitempty"`
	Y           []any   `json:"y,omitempty"`
	Labels      []any   `json:"labels,omitempty"`
	Values      []any   `json:"values,omitempty"`
	Mode        string  `json:"mode,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	Marker      *Marker `json:"marker,omitempty"`
}

// Marker holds per-trace styling.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Layout describes figure-level presentation: title, axes, bar mode.
type Layout struct {
	Title   *Title `json:"title,omitempty"`
	XAxis   *Axis  `json:"xaxis,omitempty"`
	YAxis   *Axis  `json:"yaxis,omitempty"`
	BarMode string `json:"barmode,omitempty"`
}

// Title is the figure title.
type Title struct {
	Text string `json:"text"`
}

// Axis describes a single axis.
type Axis struct {
	Title *Title `json:"title,omitempty"`
}

// NewFigure creates an empty figure with no traces.
func NewFigure() *Figure {
	return &Figure{Data: []Trace{}}
}

// AddTrace appends a trace to the figure and returns the figure for chaining.
func (f *Figure) AddTrace(t Trace) *Figure {
	f.Data = append(f.Data, t)
	return f
}

// SetTitle sets the layout title text.
func (f *Figure) SetTitle(text string) *Figure {
	f.Layout.Title = &Title{Text: text}
	return f
}
