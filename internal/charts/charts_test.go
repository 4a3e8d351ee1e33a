package charts_test

import (
	"encoding/json"
	"testing"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/logbot/logbot/internal/charts"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   bool
	}{
		{"ints", []any{int64(1), int64(2)}, true},
		{"floats with nil", []any{1.5, nil, 2.0}, true},
		{"mixed int and float", []any{int64(1), 2.5}, true},
		{"strings", []any{"a", "b"}, false},
		{"number and string", []any{int64(1), "2"}, false},
		{"bools", []any{true, false}, false},
		{"all nil", []any{nil, nil}, false},
		{"empty", []any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, charts.IsNumeric(tt.values))
		})
	}
}

func TestSelectChartsSingleNumeric(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"function_name", "duration_ms"},
		Rows: [][]any{
			{"auth_user", int64(924)},
			{"get_data", int64(218)},
		},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindHistogram, specs[0].Kind)
	assert.Equal(t, "duration_ms", specs[0].X)
	assert.Equal(t, 30, specs[0].Bins)
	assert.Equal(t, "box", specs[0].Marginal)
	assert.Equal(t, "Distribution of duration_ms", specs[0].Title)
}

func TestSelectChartsNoNumericUsesFirstCategorical(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"function_name", "status"},
		Rows: [][]any{
			{"auth_user", "FAILED"},
			{"get_data", "FAILED"},
		},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindBar, specs[0].Kind)
	assert.Equal(t, "function_name", specs[0].X)
	assert.Equal(t, "Frequency of function_name", specs[0].Title)
	assert.Equal(t, []charts.Frequency{{Value: "auth_user", Count: 1}, {Value: "get_data", Count: 1}}, specs[0].Frequencies)
}

func TestValueCountsOrdering(t *testing.T) {
	got := charts.ValueCounts([]any{"b", "a", "c", "a", nil, "c", "a"})
	assert.Equal(t, []charts.Frequency{
		{Value: "a", Count: 3},
		{Value: "c", Count: 2},
		{Value: "b", Count: 1},
	}, got)

	ties := charts.ValueCounts([]any{"x", "y", "z"})
	assert.Equal(t, "x", ties[0].Value)
	assert.Equal(t, "z", ties[2].Value)
}

func TestSelectChartsTwoNumeric(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"bytes_sent", "status_code"},
		Rows:    [][]any{{int64(2111), int64(200)}, {int64(2635), int64(403)}},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindScatter, specs[0].Kind)
	assert.Equal(t, "bytes_sent", specs[0].X)
	assert.Equal(t, "status_code", specs[0].Y)
	assert.Equal(t, "status_code vs bytes_sent", specs[0].Title)
}

func TestBivariateKinds(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"endpoint", "status_code", "method"},
		Rows:    [][]any{{"/api/login", int64(200), "GET"}, {"/api/data", int64(403), "POST"}},
	}
	box := charts.Bivariate(rs, "endpoint", "status_code")
	assert.Equal(t, charts.KindBox, box.Kind)

	grouped := charts.Bivariate(rs, "endpoint", "method")
	assert.Equal(t, charts.KindGroupedHistogram, grouped.Kind)
	assert.Equal(t, "method", grouped.Color)
}

func TestSelectChartsThreeNumeric(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"a", "b", "c"},
		Rows:    [][]any{{int64(1), int64(2), 3.5}},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindScatter3D, specs[0].Kind)
	assert.Equal(t, "a", specs[0].Color)
	assert.Equal(t, "3D Plot: ['a', 'b', 'c']", specs[0].Title)
}

func TestSelectChartsParallelFirstFour(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"n1", "label", "n2", "n3", "n4", "n5"},
		Rows:    [][]any{{int64(1), "x", int64(2), int64(3), int64(4), int64(5)}},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindParallel, specs[0].Kind)
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, specs[0].Dimensions)
	assert.Equal(t, "Parallel Coordinates Plot", specs[0].Title)

	// moving columns that are not selected leaves the choice unchanged
	reordered := &logstore.ResultSet{
		Columns: []string{"label", "n1", "n2", "n3", "n4", "n5"},
		Rows:    [][]any{{"x", int64(1), int64(2), int64(3), int64(4), int64(5)}},
	}
	assert.Equal(t, specs, charts.SelectCharts(reordered))
}

func TestSelectChartsEmpty(t *testing.T) {
	assert.Empty(t, charts.SelectCharts(&logstore.ResultSet{}))
	assert.Empty(t, charts.SelectCharts(nil))
}

func TestRenderHistogramLayout(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"duration_ms"},
		Rows:    [][]any{{int64(924)}, {int64(476)}},
	}
	spec := charts.SelectCharts(rs)[0]
	fig, err := charts.Render(spec, rs)
	require.NoError(t, err)
	require.Len(t, fig.Data, 2)
	assert.Equal(t, grob.TraceTypeHistogram, fig.Data[0].GetType())
	assert.Equal(t, grob.TraceTypeBox, fig.Data[1].GetType())

	raw, err := json.Marshal(fig)
	require.NoError(t, err)
	var decoded struct {
		Layout struct {
			Title struct {
				Text    string  `json:"text"`
				X       float64 `json:"x"`
				XAnchor string  `json:"xanchor"`
			} `json:"title"`
			Template     string `json:"template"`
			PlotBGColor  string `json:"plot_bgcolor"`
			PaperBGColor string `json:"paper_bgcolor"`
			YAxis2       struct {
				Domain []float64 `json:"domain"`
			} `json:"yaxis2"`
		} `json:"layout"`
		Data []struct {
			Type   string `json:"type"`
			NBinsX int    `json:"nbinsx"`
			YAxis  string `json:"yaxis"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Distribution of duration_ms", decoded.Layout.Title.Text)
	assert.Equal(t, 0.5, decoded.Layout.Title.X)
	assert.Equal(t, "center", decoded.Layout.Title.XAnchor)
	assert.Equal(t, "plotly_dark", decoded.Layout.Template)
	assert.Equal(t, "#111111", decoded.Layout.PlotBGColor)
	assert.Equal(t, "#111111", decoded.Layout.PaperBGColor)
	assert.Equal(t, []float64{0.8, 1}, decoded.Layout.YAxis2.Domain)
	require.Len(t, decoded.Data, 2)
	assert.Equal(t, "histogram", decoded.Data[0].Type)
	assert.Equal(t, 30, decoded.Data[0].NBinsX)
	assert.Equal(t, "box", decoded.Data[1].Type)
	assert.Equal(t, "y2", decoded.Data[1].YAxis)
}

func TestRenderGroupedHistogram(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"endpoint", "method"},
		Rows: [][]any{
			{"/api/login", "GET"},
			{"/api/data", "GET"},
			{"/api/login", "POST"},
		},
	}
	fig, err := charts.Render(charts.Bivariate(rs, "endpoint", "method"), rs)
	require.NoError(t, err)
	require.Len(t, fig.Data, 2)
	get, ok := fig.Data[0].(*grob.Histogram)
	require.True(t, ok)
	assert.EqualValues(t, "GET", get.Name)
	assert.Equal(t, []any{"/api/login", "/api/data"}, get.X.Value())
	assert.Equal(t, grob.BarBarmodeGroup, fig.Layout.Barmode)
}

func TestRenderUnknownColumn(t *testing.T) {
	rs := &logstore.ResultSet{Columns: []string{"a"}, Rows: [][]any{{int64(1)}}}
	_, err := charts.Render(charts.ChartSpec{Kind: charts.KindScatter, X: "a", Y: "missing"}, rs)
	assert.ErrorIs(t, err, charts.ErrUnknownColumn)

	_, err = charts.RenderAll([]charts.ChartSpec{{Kind: "pie"}}, rs)
	assert.Error(t, err)
}

func TestSelectChartsRepeatedColumnNames(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"status", "status"},
		Rows:    [][]any{{"FAILED", int64(3)}, {"SUCCESS", int64(7)}},
	}
	assert.Equal(t, []string{"status_2"}, charts.NumericColumns(rs.WithUniqueColumns()))

	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	assert.Equal(t, charts.KindHistogram, specs[0].Kind)
	assert.Equal(t, "status_2", specs[0].X)

	fig, err := charts.Render(specs[0], rs)
	require.NoError(t, err)
	hist, ok := fig.Data[0].(*grob.Histogram)
	require.True(t, ok)
	assert.Equal(t, []any{int64(3), int64(7)}, hist.X.Value())
}

func TestRenderParallelCoordinates(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"a", "b", "c", "d"},
		Rows:    [][]any{{int64(1), int64(2), 3.5, nil}, {int64(4), int64(5), 6.5, int64(1)}},
	}
	specs := charts.SelectCharts(rs)
	require.Len(t, specs, 1)
	fig, err := charts.Render(specs[0], rs)
	require.NoError(t, err)

	raw, err := json.Marshal(fig)
	require.NoError(t, err)
	var decoded struct {
		Data []struct {
			Type       string `json:"type"`
			Dimensions []struct {
				Label string `json:"label"`
			} `json:"dimensions"`
			Line struct {
				Color      []float64 `json:"color"`
				Colorscale string    `json:"colorscale"`
			} `json:"line"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Data, 1)
	assert.Equal(t, "parcoords", decoded.Data[0].Type)
	assert.Len(t, decoded.Data[0].Dimensions, 4)
	assert.Equal(t, []float64{1, 4}, decoded.Data[0].Line.Color)
	assert.Equal(t, "Plasma", decoded.Data[0].Line.Colorscale)
}
