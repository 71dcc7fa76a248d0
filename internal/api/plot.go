package api

import (
	"fmt"
	"image/color"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/monitoring"
)

// projection maps a 3-D RAS point onto one anatomical plane.
type projection struct {
	name   string
	xLabel string
	yLabel string
	apply  func(v r3.Vec) (x, y float64)
}

var projections = map[string]projection{
	"axial": {
		name: "axial", xLabel: "R (mm)", yLabel: "A (mm)",
		apply: func(v r3.Vec) (float64, float64) { return v.X, v.Y },
	},
	"sagittal": {
		name: "sagittal", xLabel: "A (mm)", yLabel: "S (mm)",
		apply: func(v r3.Vec) (float64, float64) { return v.Y, v.Z },
	},
	"coronal": {
		name: "coronal", xLabel: "R (mm)", yLabel: "S (mm)",
		apply: func(v r3.Vec) (float64, float64) { return v.X, v.Z },
	},
}

// plotLandmarkSet renders a PNG projection of a landmark set with the
// classified AC-PC line. Debugging-only endpoint for checking picks
// without the host UI. Query params: plane (axial|sagittal|coronal,
// default sagittal).
func (s *Server) plotLandmarkSet(w http.ResponseWriter, r *http.Request) {
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

	p := plot.New()
	title := set.Label
	if title == "" {
		title = set.SetID
	}
	p.Title.Text = fmt.Sprintf("%s (%s projection)", title, proj.name)
	p.X.Label.Text = proj.xLabel
	p.Y.Label.Text = proj.yLabel

	if err := addLandmarkMarks(p, proj, ac, pc, set.Midline); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		monitoring.Logf("write plot: %v", err)
	}
}

func addLandmarkMarks(p *plot.Plot, proj projection, ac, pc, midline r3.Vec) error {
	xy := func(v r3.Vec) plotter.XY {
		x, y := proj.apply(v)
		return plotter.XY{X: x, Y: y}
	}

	line, err := plotter.NewLine(plotter.XYs{xy(pc), xy(ac)})
	if err != nil {
		return fmt.Errorf("commissural line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.Gray{Y: 128}
	p.Add(line)
	p.Legend.Add("AC-PC line", line)

	marks := []struct {
		label string
		point r3.Vec
		color color.Color
	}{
		{"AC", ac, color.RGBA{R: 220, A: 255}},
		{"PC", pc, color.RGBA{B: 220, A: 255}},
		{"midline", midline, color.RGBA{G: 160, A: 255}},
	}
	for _, m := range marks {
		scatter, err := plotter.NewScatter(plotter.XYs{xy(m.point)})
		if err != nil {
			return fmt.Errorf("%s mark: %w", m.label, err)
		}
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Color = m.color
		p.Add(scatter)
		p.Legend.Add(m.label, scatter)
	}
	return nil
}
