package charts

import (
	"errors"
	"fmt"
	"reflect"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/logbot/logbot/internal/logstore"
)

var ErrUnknownColumn = errors.New("chart column not in result")

// Figure is a Plotly figure: {"data": [...], "layout": {...}}.
type Figure = grob.Fig

const (
	colorHistogram = "#00CC96"
	colorBar       = "#636EFA"
	colorScatter   = "#AB63FA"
	colorBox       = "#EF553B"
	background     = "#111111"
	fontFamily     = "Segoe UI"
	colorScale     = "Plasma"
)

// CommonLayout is the dark layout shared by every figure.
func CommonLayout(title string) *grob.Layout {
	return &grob.Layout{
		Title: &grob.LayoutTitle{
			Text:    types.S(title),
			X:       types.N(0.5),
			Xanchor: grob.LayoutTitleXanchorCenter,
		},
		Template: "plotly_dark",
		Margin: &grob.LayoutMargin{
			L: types.N(40),
			R: types.N(40),
			T: types.N(60),
			B: types.N(40),
		},
		Font: &grob.LayoutFont{Family: types.S(fontFamily), Size: types.N(14)},
		Hoverlabel: &grob.LayoutHoverlabel{
			Bgcolor: types.C("black"),
			Font:    &grob.LayoutHoverlabelFont{Family: types.S(fontFamily), Size: types.N(13)},
		},
		PlotBgcolor:  types.C(background),
		PaperBgcolor: types.C(background),
	}
}

func xTitle(text string) *grob.LayoutXaxis {
	return &grob.LayoutXaxis{Title: &grob.LayoutXaxisTitle{Text: types.S(text)}}
}

func yTitle(text string) *grob.LayoutYaxis {
	return &grob.LayoutYaxis{Title: &grob.LayoutYaxisTitle{Text: types.S(text)}}
}

func solid(color string) *types.ArrayOK[*types.ColorWithColorScale] {
	return types.ArrayOKValue(types.UseColor(types.C(color)))
}

// scaled maps a numeric column onto the color scale. Missing values sit at 0.
func scaled(values []any) *types.ArrayOK[*types.ColorWithColorScale] {
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = toFloat(v)
	}
	return types.ArrayOKArray(types.UseColorScaleValues(fs)...)
}

func toFloat(v any) float64 {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	case rv.CanFloat():
		return rv.Float()
	}
	return 0
}

// Render binds spec to the data in rs.
func Render(spec ChartSpec, rs *logstore.ResultSet) (*Figure, error) {
	rs = rs.WithUniqueColumns()
	col := func(name string) ([]any, error) {
		i := rs.ColumnIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		return rs.Values(i), nil
	}

	layout := CommonLayout(spec.Title)
	fig := &Figure{Layout: layout}

	switch spec.Kind {
	case KindHistogram:
		x, err := col(spec.X)
		if err != nil {
			return nil, err
		}
		fig.AddTraces(
			&grob.Histogram{
				X:       types.DataArray(x),
				Name:    types.S(spec.X),
				Nbinsx:  types.I(spec.Bins),
				Opacity: types.N(0.85),
				Marker:  &grob.HistogramMarker{Color: solid(colorHistogram)},
				Xaxis:   "x",
				Yaxis:   "y",
			},
			&grob.Box{
				X:          types.DataArray(x),
				Name:       types.S(spec.X),
				Line:       &grob.BoxLine{Color: "white", Width: types.N(2)},
				Fillcolor:  "rgba(0,204,150,0.2)",
				Marker:     &grob.BoxMarker{Color: "white"},
				Xaxis:      "x",
				Yaxis:      "y2",
				Showlegend: types.False,
			},
		)
		layout.Xaxis = xTitle(spec.X)
		layout.Yaxis = yTitle("count")
		layout.Yaxis.Domain = []float64{0, 0.8}
		layout.YAxis2 = &grob.LayoutYaxis{Domain: []float64{0.8, 1}, Showticklabels: types.False}

	case KindBar:
		xs := make([]string, len(spec.Frequencies))
		ys := make([]int, len(spec.Frequencies))
		for i, f := range spec.Frequencies {
			xs[i], ys[i] = f.Value, f.Count
		}
		fig.AddTraces(&grob.Bar{
			X:      types.DataArray(xs),
			Y:      types.DataArray(ys),
			Marker: &grob.BarMarker{Color: solid(colorBar)},
		})
		layout.Xaxis = xTitle(spec.X)
		layout.Yaxis = yTitle("Count")

	case KindScatter, KindBox:
		x, err := col(spec.X)
		if err != nil {
			return nil, err
		}
		y, err := col(spec.Y)
		if err != nil {
			return nil, err
		}
		if spec.Kind == KindScatter {
			fig.AddTraces(&grob.Scatter{
				X:      types.DataArray(x),
				Y:      types.DataArray(y),
				Mode:   grob.ScatterModeMarkers,
				Marker: &grob.ScatterMarker{Color: solid(colorScatter)},
			})
		} else {
			fig.AddTraces(&grob.Box{
				X:      types.DataArray(x),
				Y:      types.DataArray(y),
				Marker: &grob.BoxMarker{Color: colorBox},
			})
		}
		layout.Xaxis = xTitle(spec.X)
		layout.Yaxis = yTitle(spec.Y)

	case KindGroupedHistogram:
		x, err := col(spec.X)
		if err != nil {
			return nil, err
		}
		groups, err := col(spec.Color)
		if err != nil {
			return nil, err
		}
		for _, g := range ValueCounts(groups) {
			var xs []any
			for i, v := range groups {
				if v != nil && fmt.Sprint(v) == g.Value {
					xs = append(xs, x[i])
				}
			}
			fig.AddTraces(&grob.Histogram{X: types.DataArray(xs), Name: types.S(g.Value)})
		}
		layout.Barmode = grob.BarBarmodeGroup
		layout.Xaxis = xTitle(spec.X)
		layout.Legend = &grob.LayoutLegend{Title: &grob.LayoutLegendTitle{Text: types.S(spec.Color)}}

	case KindScatter3D:
		x, err := col(spec.X)
		if err != nil {
			return nil, err
		}
		y, err := col(spec.Y)
		if err != nil {
			return nil, err
		}
		z, err := col(spec.Z)
		if err != nil {
			return nil, err
		}
		color, err := col(spec.Color)
		if err != nil {
			return nil, err
		}
		fig.AddTraces(&grob.Scatter3d{
			X:       types.DataArray(x),
			Y:       types.DataArray(y),
			Z:       types.DataArray(z),
			Mode:    grob.Scatter3dModeMarkers,
			Opacity: types.N(0.7),
			Marker: &grob.Scatter3dMarker{
				Color:      scaled(color),
				Colorscale: &types.ColorScale{Name: colorScale},
				Showscale:  types.True,
			},
		})
		layout.Scene = &grob.LayoutScene{
			Xaxis: &grob.LayoutSceneXaxis{Title: &grob.LayoutSceneXaxisTitle{Text: types.S(spec.X)}},
			Yaxis: &grob.LayoutSceneYaxis{Title: &grob.LayoutSceneYaxisTitle{Text: types.S(spec.Y)}},
			Zaxis: &grob.LayoutSceneZaxis{Title: &grob.LayoutSceneZaxisTitle{Text: types.S(spec.Z)}},
		}

	case KindParallel:
		dims := make([]grob.ParcoordsDimension, 0, len(spec.Dimensions))
		for _, d := range spec.Dimensions {
			v, err := col(d)
			if err != nil {
				return nil, err
			}
			dims = append(dims, grob.ParcoordsDimension{Label: types.S(d), Values: types.DataArray(v)})
		}
		color, err := col(spec.Color)
		if err != nil {
			return nil, err
		}
		fig.AddTraces(&grob.Parcoords{
			Dimensions: dims,
			Line: &grob.ParcoordsLine{
				Color:      scaled(color),
				Colorscale: &types.ColorScale{Name: colorScale},
				Showscale:  types.True,
			},
		})

	default:
		return nil, fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	return fig, nil
}

// RenderAll renders every spec, stopping at the first error.
func RenderAll(specs []ChartSpec, rs *logstore.ResultSet) ([]*Figure, error) {
	out := make([]*Figure, 0, len(specs))
	for _, s := range specs {
		f, err := Render(s, rs)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", s.Kind, err)
		}
		out = append(out, f)
	}
	return out, nil
}
