// Command acpc-transform computes a commissure alignment matrix from a
// landmarks JSON file and prints it, without going through the HTTP API.
//
// The input file carries the two commissure candidates and a midline
// point, in millimetres:
//
//	{"line_a": [0, 10, 0], "line_b": [0, -10, 0], "midline": [0, 0, 50]}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/convention"
)

var (
	inputFile = flag.String("input", "", "Path to the landmarks JSON file")
	center    = flag.String("center", "MC", "Output origin: MC, AC, or PC")
	conv      = flag.String("convention", "ras", "Output convention: ras or lps")
	tolerance = flag.Float64("tol", acpc.DefaultDegeneracyTolerance, "Degeneracy tolerance")
	asJSON    = flag.Bool("json", false, "Print the matrix as a JSON array")
)

type landmarksFile struct {
	LineA   [3]float64 `json:"line_a"`
	LineB   [3]float64 `json:"line_b"`
	Midline [3]float64 `json:"midline"`
}

func vec(p [3]float64) r3.Vec {
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

func main() {
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("-input is required")
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("failed to read landmarks file: %v", err)
	}
	var lm landmarksFile
	if err := json.Unmarshal(data, &lm); err != nil {
		log.Fatalf("failed to parse landmarks file: %v", err)
	}

	mode, err := acpc.ParseCenterMode(*center)
	if err != nil {
		log.Fatalf("invalid center mode: %v", err)
	}
	outConv, err := convention.Parse(*conv)
	if err != nil {
		log.Fatalf("invalid convention: %v", err)
	}

	ac, pc := acpc.ClassifyACPC(vec(lm.LineA), vec(lm.LineB))
	transform, err := acpc.BuildTransformTol(ac, pc, vec(lm.Midline), mode, *tolerance)
	if err != nil {
		log.Fatalf("failed to build transform: %v", err)
	}
	transform = convention.TransformFor(transform, outConv)

	if *asJSON {
		out, err := json.Marshal(transform)
		if err != nil {
			log.Fatalf("failed to encode matrix: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("AC %v  PC %v  center %s  convention %s\n", ac, pc, mode, outConv)
	for row := 0; row < 4; row++ {
		fmt.Printf("% 12.6f % 12.6f % 12.6f % 12.6f\n",
			transform[4*row], transform[4*row+1], transform[4*row+2], transform[4*row+3])
	}
}
