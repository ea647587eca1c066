package primitive

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arrangement/isonet/geom"
)

// Settings mirrors the JSON settings block of the CSG scene input schema
// (spec §6): background-mesh resolution, the scene AABB margin, and the
// cell-function-label gate. The margin is decoded and checked to be
// non-negative by pipeline.Settings, but no code in this module applies it
// to a bounding box.
type Settings struct {
	Resolution             int     `json:"resolution"`
	SceneAABBMargin        float64 `json:"scene_aabb_margin"`
	ComputeCellFunctionLabels bool  `json:"compute_cell_function_labels"`
}

// Descriptor is the JSON-tagged wire form of a single primitive in the
// scene's function list: a type tag plus the union of fields any primitive
// type might need. Unused fields for a given Type are ignored.
type Descriptor struct {
	Type string `json:"type"`

	Point  [3]float64 `json:"point"`
	Normal [3]float64 `json:"normal"`

	Direction [3]float64 `json:"direction"`

	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`

	AxisPoint     [3]float64 `json:"axis_point"`
	AxisDirection [3]float64 `json:"axis_direction"`

	P0 [3]float64 `json:"p0"`
	P1 [3]float64 `json:"p1"`
	R0 float64    `json:"r0"`
	R1 float64    `json:"r1"`

	HalfSize [3]float64 `json:"half_size"`

	Value float64 `json:"value"`

	MeshPath string `json:"mesh_path"`

	ExtrudeProfile  [][2]float64 `json:"extrude_profile"`
	ExtrudeHeight   float64      `json:"extrude_height"`
}

// Scene is the fully decoded CSG primitive list plus settings for a run.
type Scene struct {
	Settings   Settings
	Primitives []Evaluator
}

// LoadSceneFile reads and decodes a scene JSON document from path.
func LoadSceneFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("primitive: read scene file: %w", err)
	}
	return LoadScene(data)
}

type sceneDoc struct {
	Settings   Settings     `json:"settings"`
	Primitives []Descriptor `json:"primitives"`
}

// LoadScene decodes a scene JSON document from raw bytes.
func LoadScene(data []byte) (*Scene, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("primitive: decode scene: %w", err)
	}
	scene := &Scene{Settings: doc.Settings}
	for i, d := range doc.Primitives {
		ev, err := build(d)
		if err != nil {
			return nil, fmt.Errorf("primitive: scene entry %d: %w", i, err)
		}
		scene.Primitives = append(scene.Primitives, ev)
	}
	return scene, nil
}

func v(a [3]float64) geom.Vec3 { return geom.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func build(d Descriptor) (Evaluator, error) {
	switch d.Type {
	case "plane":
		return Plane{Point: v(d.Point), Normal: v(d.Normal)}, nil
	case "line":
		return Line{Point: v(d.Point), Direction: v(d.Direction)}, nil
	case "sphere":
		return Sphere{Center: v(d.Center), Radius: d.Radius}, nil
	case "cylinder":
		return Cylinder{AxisPoint: v(d.AxisPoint), AxisDirection: v(d.AxisDirection), Radius: d.Radius}, nil
	case "cone":
		return NewConeTwoRadius(v(d.P0), v(d.P1), d.R0, d.R1), nil
	case "constant":
		return Constant{Value: d.Value}, nil
	case "box":
		return Box{Center: v(d.Center), HalfSize: v(d.HalfSize)}, nil
	case "mesh":
		return NewMeshFromSTL(d.MeshPath)
	case "extrude":
		return NewExtrude(d.ExtrudeProfile, d.ExtrudeHeight)
	default:
		return nil, &ErrUnknownType{Type: d.Type}
	}
}
