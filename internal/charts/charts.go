// Package charts picks chart types from the shape of a query result and
// renders them as Plotly figures.
package charts

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/logbot/logbot/internal/logstore"
)

// Kind is a chart type.
type Kind string

const (
	KindHistogram        Kind = "histogram"
	KindBar              Kind = "bar"
	KindScatter          Kind = "scatter"
	KindBox              Kind = "box"
	KindGroupedHistogram Kind = "grouped_histogram"
	KindScatter3D        Kind = "scatter_3d"
	KindParallel         Kind = "parallel_coordinates"
)

const (
	HistogramBins  = 30
	MarginalBox    = "box"
	maxParallelDim = 4
)

// Frequency is one bar of a frequency chart.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ChartSpec describes one chart bound to result columns.
type ChartSpec struct {
	Kind        Kind        `json:"kind"`
	Title       string      `json:"title"`
	X           string      `json:"x,omitempty"`
	Y           string      `json:"y,omitempty"`
	Z           string      `json:"z,omitempty"`
	Color       string      `json:"color,omitempty"`
	Dimensions  []string    `json:"dimensions,omitempty"`
	Bins        int         `json:"bins,omitempty"`
	Marginal    string      `json:"marginal,omitempty"`
	Frequencies []Frequency `json:"frequencies,omitempty"`
}

// IsNumeric reports whether a column holds numbers: at least one non-nil
// value, and every non-nil value an integer or float.
func IsNumeric(values []any) bool {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			seen = true
		default:
			return false
		}
	}
	return seen
}

// NumericColumns returns the numeric column names in result order.
func NumericColumns(rs *logstore.ResultSet) []string {
	var out []string
	for i, c := range rs.Columns {
		if IsNumeric(rs.Values(i)) {
			out = append(out, c)
		}
	}
	return out
}

// SelectCharts chooses charts from the numeric columns of rs:
//
//	1    histogram with marginal box
//	2    bivariate chart of the first against the second
//	3    3-D scatter
//	>3   parallel coordinates over the first four
//	0    frequency bar chart of the first non-numeric column
//
// A result without columns yields no charts. Repeated column names are
// told apart as in logstore.UniqueColumns; Render does the same.
func SelectCharts(rs *logstore.ResultSet) []ChartSpec {
	if rs.Empty() {
		return nil
	}
	rs = rs.WithUniqueColumns()
	numeric := NumericColumns(rs)
	switch {
	case len(numeric) == 1:
		return []ChartSpec{Univariate(rs, numeric[0])}
	case len(numeric) == 2:
		return []ChartSpec{Bivariate(rs, numeric[0], numeric[1])}
	case len(numeric) >= 3:
		if len(numeric) > maxParallelDim {
			numeric = numeric[:maxParallelDim]
		}
		return []ChartSpec{Multivariate(numeric)}
	}
	for i, c := range rs.Columns {
		if !IsNumeric(rs.Values(i)) {
			return []ChartSpec{Univariate(rs, c)}
		}
	}
	return nil
}

// Univariate charts a single column: a histogram for numbers, a frequency
// bar chart otherwise.
func Univariate(rs *logstore.ResultSet, column string) ChartSpec {
	values := rs.Values(rs.ColumnIndex(column))
	if IsNumeric(values) {
		return ChartSpec{
			Kind:     KindHistogram,
			Title:    "Distribution of " + column,
			X:        column,
			Bins:     HistogramBins,
			Marginal: MarginalBox,
		}
	}
	return ChartSpec{
		Kind:        KindBar,
		Title:       "Frequency of " + column,
		X:           column,
		Y:           "count",
		Frequencies: ValueCounts(values),
	}
}

// Bivariate charts y against x.
func Bivariate(rs *logstore.ResultSet, x, y string) ChartSpec {
	xNum := IsNumeric(rs.Values(rs.ColumnIndex(x)))
	yNum := IsNumeric(rs.Values(rs.ColumnIndex(y)))
	spec := ChartSpec{Title: y + " vs " + x, X: x, Y: y}
	switch {
	case xNum && yNum:
		spec.Kind = KindScatter
	case yNum:
		spec.Kind = KindBox
	default:
		spec.Kind = KindGroupedHistogram
		spec.Color = y
	}
	return spec
}

// Multivariate charts three dimensions as a 3-D scatter and more as
// parallel coordinates. Fewer than three is a caller error.
func Multivariate(dims []string) ChartSpec {
	if len(dims) == 3 {
		return ChartSpec{
			Kind:       KindScatter3D,
			Title:      "3D Plot: " + listRepr(dims),
			X:          dims[0],
			Y:          dims[1],
			Z:          dims[2],
			Color:      dims[0],
			Dimensions: append([]string(nil), dims...),
		}
	}
	return ChartSpec{
		Kind:       KindParallel,
		Title:      "Parallel Coordinates Plot",
		Color:      dims[0],
		Dimensions: append([]string(nil), dims...),
	}
}

// ValueCounts counts non-nil values, most frequent first. Ties keep the
// order of first appearance.
func ValueCounts(values []any) []Frequency {
	idx := make(map[string]int)
	var out []Frequency
	for _, v := range values {
		if v == nil {
			continue
		}
		key := fmt.Sprint(v)
		if i, ok := idx[key]; ok {
			out[i].Count++
			continue
		}
		idx[key] = len(out)
		out = append(out, Frequency{Value: key, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func listRepr(items []string) string {
	s := "["
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		s += "'" + it + "'"
	}
	return s + "]"
}
