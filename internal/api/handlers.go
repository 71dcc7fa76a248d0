package api

import (
	"encoding/json"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/convention"
	"github.com/neuronav-data/stereotax/internal/db"
	"github.com/neuronav-data/stereotax/internal/scene"
	"github.com/neuronav-data/stereotax/internal/version"
)

// point is the wire form of a 3-vector: [x, y, z] in RAS mm.
type point [3]float64

func (p point) vec() r3.Vec  { return r3.Vec{X: p[0], Y: p[1], Z: p[2]} }
func fromVec(v r3.Vec) point { return point{v.X, v.Y, v.Z} }

type landmarkSetJSON struct {
	SetID       string `json:"set_id,omitempty"`
	Label       string `json:"label,omitempty"`
	LineA       point  `json:"line_a"`
	LineB       point  `json:"line_b"`
	Midline     point  `json:"midline"`
	CreatedAtNs int64  `json:"created_at_ns,omitempty"`
}

func toLandmarkSetJSON(set *db.LandmarkSet) landmarkSetJSON {
	return landmarkSetJSON{
		SetID:       set.SetID,
		Label:       set.Label,
		LineA:       fromVec(set.LineA),
		LineB:       fromVec(set.LineB),
		Midline:     fromVec(set.Midline),
		CreatedAtNs: set.CreatedAtNs,
	}
}

type transformJSON struct {
	TransformID  string     `json:"transform_id"`
	SetID        string     `json:"set_id"`
	CenterMode   string     `json:"center_mode"`
	Convention   string     `json:"convention"`
	Matrix       [16]float64 `json:"matrix"`
	Det          float64    `json:"det"`
	ComputedAtNs int64      `json:"computed_at_ns"`
}

func toTransformJSON(record *db.TransformRecord, conv convention.Convention) transformJSON {
	return transformJSON{
		TransformID:  record.TransformID,
		SetID:        record.SetID,
		CenterMode:   string(record.CenterMode),
		Convention:   string(conv),
		Matrix:       [16]float64(convention.TransformFor(record.Transform, conv)),
		Det:          record.Det,
		ComputedAtNs: record.ComputedAtNs,
	}
}

func (s *Server) createLandmarkSet(w http.ResponseWriter, r *http.Request) {
	var body landmarkSetJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	set := &db.LandmarkSet{
		Label:   body.Label,
		LineA:   body.LineA.vec(),
		LineB:   body.LineB.vec(),
		Midline: body.Midline.vec(),
	}
	if err := s.db.SaveLandmarkSet(set); err != nil {
		writeWorkError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLandmarkSetJSON(set))
}

func (s *Server) listLandmarkSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.db.ListLandmarkSets()
	if err != nil {
		writeWorkError(w, err)
		return
	}
	out := make([]landmarkSetJSON, 0, len(sets))
	for i := range sets {
		out = append(out, toLandmarkSetJSON(&sets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLandmarkSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.db.GetLandmarkSet(r.PathValue("id"))
	if err != nil {
		writeWorkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLandmarkSetJSON(set))
}

func (s *Server) deleteLandmarkSet(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteLandmarkSet(r.PathValue("id")); err != nil {
		writeWorkError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// computeTransform runs the alignment pipeline for a stored landmark set
// and persists the result. Query params: center (MC|AC|PC, default from
// config), convention (ras|lps, response only).
func (s *Server) computeTransform(w http.ResponseWriter, r *http.Request) {
	set, err := s.db.GetLandmarkSet(r.PathValue("id"))
	if err != nil {
		writeWorkError(w, err)
		return
	}

	center := s.defaultCenter
	if param := r.URL.Query().Get("center"); param != "" {
		center, err = acpc.ParseCenterMode(param)
		if err != nil {
			writeWorkError(w, err)
			return
		}
	}
	conv, err := s.requestConvention(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pipeline := &scene.Pipeline{Store: s.db, Tolerance: s.tolerance}
	result, err := pipeline.Align(scene.AlignmentRequest{
		SetID:   set.SetID,
		LineA:   &set.LineA,
		LineB:   &set.LineB,
		Midline: &set.Midline,
		Center:  center,
	})
	if err != nil {
		writeWorkError(w, err)
		return
	}

	record, err := s.db.GetTransform(result.TransformID)
	if err != nil {
		writeWorkError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransformJSON(record, conv))
}

func (s *Server) listTransforms(w http.ResponseWriter, r *http.Request) {
	conv, err := s.requestConvention(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 404 for an unknown set rather than an empty list.
	if _, err := s.db.GetLandmarkSet(r.PathValue("id")); err != nil {
		writeWorkError(w, err)
		return
	}

	records, err := s.db.ListTransforms(r.PathValue("id"))
	if err != nil {
		writeWorkError(w, err)
		return
	}
	out := make([]transformJSON, 0, len(records))
	for i := range records {
		out = append(out, toTransformJSON(&records[i], conv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTransform(w http.ResponseWriter, r *http.Request) {
	conv, err := s.requestConvention(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.db.GetTransform(r.PathValue("id"))
	if err != nil {
		writeWorkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransformJSON(record, conv))
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

// requestConvention resolves the convention query parameter against the
// configured default.
func (s *Server) requestConvention(r *http.Request) (convention.Convention, error) {
	param := r.URL.Query().Get("convention")
	if param == "" {
		return s.defaultConvention, nil
	}
	return convention.Parse(param)
}
