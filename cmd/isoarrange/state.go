package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arrangement/isonet/geom"
)

// state is the CLI's persisted working state: the pipeline settings, the
// background mesh's bounding box, and the timer report from the most
// recent execute-solver run. Kept as a flat JSON file between invocations
// so update-setting/update-environment/execute-solver/print-statistics can
// be run as separate commands, mirroring how the finite-elements example's
// specs/loads/restraints files are each produced and consumed independently.
type state struct {
	Resolution                int                `json:"resolution"`
	SceneAABBMargin           float64            `json:"scene_aabb_margin"`
	ComputeCellFunctionLabels bool               `json:"compute_cell_function_labels"`
	BoxMin                    [3]float64         `json:"box_min"`
	BoxMax                    [3]float64         `json:"box_max"`
	Statistics                map[string]string  `json:"statistics,omitempty"`
}

func defaultState() state {
	return state{
		Resolution:      20,
		SceneAABBMargin: 0.1,
		BoxMin:          [3]float64{-1, -1, -1},
		BoxMax:          [3]float64{1, 1, 1},
	}
}

func loadState(path string) (state, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultState(), nil
	}
	if err != nil {
		return state{}, fmt.Errorf("read state file %s: %w", path, err)
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return state{}, fmt.Errorf("decode state file %s: %w", path, err)
	}
	return s, nil
}

func saveState(path string, s state) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (s state) box() geom.Box3 {
	min := geom.Vec3{X: s.BoxMin[0], Y: s.BoxMin[1], Z: s.BoxMin[2]}
	max := geom.Vec3{X: s.BoxMax[0], Y: s.BoxMax[1], Z: s.BoxMax[2]}
	center := geom.Vec3{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2, Z: (min.Z + max.Z) / 2}
	size := geom.Vec3{X: max.X - min.X, Y: max.Y - min.Y, Z: max.Z - min.Z}
	return geom.NewBox3(center, size)
}
