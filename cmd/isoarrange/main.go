//-----------------------------------------------------------------------------
/*

isoarrange drives the implicit surface arrangement pipeline from the command
line, one subcommand per verb, positional arguments throughout -- no flag
parsing, matching the rest of this codebase's examples (finite_elements,
hollowing_stl, spiral) which all take their inputs as bare os.Args.

Usage:

	isoarrange update-setting    <state.json> <resolution> <scene_aabb_margin> <compute_cell_function_labels>
	isoarrange update-environment <state.json> <minX> <minY> <minZ> <maxX> <maxY> <maxZ>
	isoarrange execute-solver    <state.json> <scene.json> <output-prefix>
	isoarrange print-statistics  <state.json>
	isoarrange clear-statistics  <state.json>

*/
//-----------------------------------------------------------------------------

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/arrangement/isonet/debugviz"
	"github.com/arrangement/isonet/export"
	"github.com/arrangement/isonet/pipeline"
	"github.com/arrangement/isonet/primitive"
)

//-----------------------------------------------------------------------------

func main() {
	if len(os.Args) < 3 {
		log.Fatalf("usage: isoarrange <command> <state.json> [args...]")
	}

	cmd := os.Args[1]
	statePath := os.Args[2]
	rest := os.Args[3:]

	var err error
	switch cmd {
	case "update-setting":
		err = updateSetting(statePath, rest)
	case "update-environment":
		err = updateEnvironment(statePath, rest)
	case "execute-solver":
		err = executeSolver(statePath, rest)
	case "print-statistics":
		err = printStatistics(statePath)
	case "clear-statistics":
		err = clearStatistics(statePath)
	default:
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("isoarrange %s: %v", cmd, err)
	}
}

//-----------------------------------------------------------------------------

func updateSetting(statePath string, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: update-setting <state.json> <resolution> <scene_aabb_margin> <compute_cell_function_labels>")
	}
	s, err := loadState(statePath)
	if err != nil {
		return err
	}

	resolution, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("resolution: %w", err)
	}
	margin, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("scene_aabb_margin: %w", err)
	}
	labels, err := strconv.ParseBool(args[2])
	if err != nil {
		return fmt.Errorf("compute_cell_function_labels: %w", err)
	}

	s.Resolution = resolution
	s.SceneAABBMargin = margin
	s.ComputeCellFunctionLabels = labels
	return saveState(statePath, s)
}

func updateEnvironment(statePath string, args []string) error {
	if len(args) != 6 {
		return fmt.Errorf("usage: update-environment <state.json> <minX> <minY> <minZ> <maxX> <maxY> <maxZ>")
	}
	s, err := loadState(statePath)
	if err != nil {
		return err
	}

	var v [6]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("coordinate %d: %w", i, err)
		}
		v[i] = f
	}
	s.BoxMin = [3]float64{v[0], v[1], v[2]}
	s.BoxMax = [3]float64{v[3], v[4], v[5]}
	return saveState(statePath, s)
}

func executeSolver(statePath string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: execute-solver <state.json> <scene.json> <output-prefix>")
	}
	scenePath, outputPrefix := args[0], args[1]

	s, err := loadState(statePath)
	if err != nil {
		return err
	}

	scene, err := primitive.LoadSceneFile(scenePath)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	p, err := pipeline.New(pipeline.Settings{
		Resolution:                s.Resolution,
		SceneAABBMargin:           s.SceneAABBMargin,
		ComputeCellFunctionLabels: s.ComputeCellFunctionLabels,
	}, scene.Primitives)
	if err != nil {
		return err
	}

	result, err := p.Run(s.box())
	if err != nil {
		return err
	}

	if err := export.WriteMesh3MF(outputPrefix+".3mf", result.Network); err != nil {
		return err
	}
	if err := export.WriteChainsDXF(outputPrefix+".dxf", result.Network, result.Edges, result.Chains); err != nil {
		return err
	}
	midZ := (s.BoxMin[2] + s.BoxMax[2]) / 2
	if err := debugviz.RenderSliceSVG(outputPrefix+".svg", result.Network, midZ, s.box(), 512, 512); err != nil {
		return err
	}
	if err := debugviz.RenderSlicePNG(outputPrefix+".png", result.Network, midZ, s.box(), 512, 512, ""); err != nil {
		return err
	}

	s.Statistics = map[string]string{}
	for label, d := range result.Timers.Report() {
		s.Statistics[label] = d.String()
	}
	s.Statistics["patch_count"] = strconv.Itoa(len(result.Patches))
	s.Statistics["arrangement_cell_count"] = strconv.Itoa(result.Cells.Count)
	s.Statistics["shell_count"] = strconv.Itoa(len(result.Shells))
	s.Statistics["component_count"] = strconv.Itoa(len(result.Components))

	return saveState(statePath, s)
}

func printStatistics(statePath string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}
	if len(s.Statistics) == 0 {
		fmt.Println("no statistics recorded yet; run execute-solver first")
		return nil
	}
	for label, v := range s.Statistics {
		fmt.Printf("%-28s %s\n", label, v)
	}
	return nil
}

func clearStatistics(statePath string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}
	s.Statistics = nil
	return saveState(statePath, s)
}
