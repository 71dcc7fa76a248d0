package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/monitoring"
)

// sceneLandmarkSet renders an interactive HTML scatter of the landmark
// geometry in the requested plane. Like the PNG plot this is a debug
// surface for eyeballing picks; no auth, not part of the stable API.
// Query params: plane (axial|sagittal|coronal, default sagittal).
func (s *Server) sceneLandmarkSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.db.GetLandmarkSet(r.PathValue("id"))
	if err != nil {
		writeWorkError(w, err)
		return
	}

	plane := r.URL.Query().Get("plane")
	if plane == "" {
		plane = "sagittal"
	}
	proj, ok := projections[plane]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown plane %q", plane))
		return
	}

	ac, pc := acpc.ClassifyACPC(set.LineA, set.LineB)

	series := map[string][]opts.ScatterData{}
	maxAbs := 1.0
	add := func(name string, x, y float64) {
		series[name] = append(series[name], opts.ScatterData{Value: []interface{}{x, y}})
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
	}
	acX, acY := proj.apply(ac)
	pcX, pcY := proj.apply(pc)
	ihX, ihY := proj.apply(set.Midline)
	add("AC", acX, acY)
	add("PC", pcX, pcY)
	add("midline", ihX, ihY)

	// Symmetric axis ranges keep the projection square and undistorted.
	pad := maxAbs * 1.1

	title := set.Label
	if title == "" {
		title = set.SetID
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "AC-PC landmarks", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("plane=%s center candidates: MC/AC/PC", proj.name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: proj.xLabel, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: proj.yLabel, NameLocation: "middle", NameGap: 30}),
	)
	for _, name := range []string{"AC", "PC", "midline"} {
		scatter.AddSeries(name, series[name], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		monitoring.Logf("write scene page: %v", err)
	}
}
