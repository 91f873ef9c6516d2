// walktool is a CLI utility for inspecting walk mesh files and simulating
// walkers on them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/walkmesh/internal/assets"
	"github.com/Faultbox/walkmesh/internal/config"
	"github.com/Faultbox/walkmesh/internal/logger"
	"github.com/Faultbox/walkmesh/internal/motion"
	"github.com/Faultbox/walkmesh/pkg/formats"
	"github.com/Faultbox/walkmesh/pkg/walkmesh"
)

func main() {
	// Global flags come before the command
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "locate":
		cmdLocate(cfg, args)
	case "walk":
		cmdWalk(cfg, args)
	case "grid":
		cmdGrid(cfg, args)
	case "config":
		cmdConfig(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`walktool - walk mesh utility

Usage:
  walktool [global flags] <command> [options]

Global flags:
  -config <file>        Config file (default ./walktool.yaml, ./config.yaml or user config dir)
  -walkmesh <file.w>    Walk mesh file
  -mesh <name>          Walk mesh name
  -max-iterations <n>   Integrator iteration cap
  -bounce <k>           Wall bounce coefficient
  -nudge <k>            Wall nudge coefficient
  -speed <v>            Walk speed in units per second
  -debug                Debug logging

Commands:
  info                          Show the meshes in the walk mesh file
  locate <x,y,z>                Find the nearest walk point to a position
  walk [options]                Simulate a walker for a number of frames
  grid [options] <output.w>     Write a flat grid walk mesh
  config [-save] [-o file]      Show the effective config, optionally saving it

Examples:
  walktool -walkmesh level.w info
  walktool -walkmesh level.w -mesh WalkMesh locate 1.5,2,0
  walktool -walkmesh level.w walk -from 1,1,0 -intent 0,1 -frames 120
  walktool grid -n 16 -size 0.5 grid.w
  walktool -bounce 1.5 -speed 4 config -save`)
}

// loadMesh loads the configured walk mesh or exits.
func loadMesh(cfg *config.Config) (*assets.Library, *walkmesh.Mesh) {
	lib := assets.NewLibrary(logger.Log)
	if _, err := lib.LoadFile(cfg.Data.WalkMeshPath); err != nil {
		logger.Fatal("failed to load walk mesh", zap.Error(err))
	}
	mesh, err := lib.Mesh(cfg.Data.MeshName)
	if err != nil {
		logger.Fatal("failed to find walk mesh",
			zap.Error(err),
			zap.Strings("available", lib.Names()))
	}
	return lib, mesh
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: walktool [global flags] info")
		os.Exit(1)
	}

	lib := assets.NewLibrary(logger.Log)
	if _, err := lib.LoadFile(cfg.Data.WalkMeshPath); err != nil {
		logger.Fatal("failed to load walk mesh", zap.Error(err))
	}

	names := lib.Names()
	fmt.Printf("File:   %s\n", cfg.Data.WalkMeshPath)
	fmt.Printf("Meshes: %d\n", len(names))

	for _, name := range names {
		mesh, err := lib.Mesh(name)
		if err != nil {
			logger.Error("listed walk mesh missing", zap.String("mesh", name), zap.Error(err))
			continue
		}
		lo, hi := mesh.Bounds()
		fmt.Println()
		fmt.Printf("%s\n", name)
		fmt.Printf("  Vertices:       %d\n", mesh.VertexCount())
		fmt.Printf("  Triangles:      %d\n", mesh.TriangleCount())
		fmt.Printf("  Boundary edges: %d\n", mesh.BoundaryEdges())
		fmt.Printf("  Bounds:         %s - %s\n", formatVec(lo), formatVec(hi))
	}
}

func cmdLocate(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: walktool [global flags] locate <x,y,z>")
		os.Exit(1)
	}

	pos, err := parseVec3(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, mesh := loadMesh(cfg)
	at, err := mesh.NearestWalkPoint(pos)
	if err != nil {
		logger.Fatal("failed to locate", zap.Error(err))
	}

	world := mesh.WorldPoint(at)
	fmt.Printf("Triangle: %d %v\n", at.Triangle, mesh.TriangleVertices(at.Triangle))
	fmt.Printf("Weights:  %s\n", formatVec(at.Weights))
	fmt.Printf("Position: %s\n", formatVec(world))
	fmt.Printf("Distance: %.4f\n", world.Sub(pos).Len())
	fmt.Printf("Up:       %s\n", formatVec(mesh.SmoothNormal(at)))
}

func cmdWalk(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("walk", flag.ExitOnError)
	from := fs.String("from", "", "Start position x,y,z (default mesh center)")
	intentFlag := fs.String("intent", "0,1", "Move direction in the walker's frame x,y")
	yaw := fs.Float64("yaw", 0, "Turn per frame in radians")
	frames := fs.Int("frames", 60, "Number of frames")
	dt := fs.Float64("dt", 1.0/60, "Frame time in seconds")
	every := fs.Int("every", 10, "Print every N frames (0 = last only)")
	fs.Parse(args)

	intent, err := parseVec2(*intentFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, mesh := loadMesh(cfg)

	var start mgl32.Vec3
	if *from != "" {
		if start, err = parseVec3(*from); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		lo, hi := mesh.Bounds()
		start = lo.Add(hi).Mul(0.5)
	}

	body, err := motion.NewBody(mesh, walkParams(cfg), cfg.Walk.Speed, logger.Log, start)
	if err != nil {
		logger.Fatal("failed to place walker", zap.Error(err))
	}
	logger.Info("walker placed",
		zap.Stringer("walker", body.ID),
		zap.Int("triangle", body.At.Triangle),
		zap.Float32s("position", body.Position[:]))

	var total motion.Stats
	exhausted := 0
	for frame := 1; frame <= *frames; frame++ {
		if *yaw != 0 {
			body.Look(float32(*yaw))
		}
		stats := body.Update(float32(*dt), intent)

		total.Iterations += stats.Iterations
		total.Crossings += stats.Crossings
		total.WallHits += stats.WallHits
		if stats.Exhausted {
			exhausted++
		}
		logger.Debug("frame",
			zap.Int("frame", frame),
			zap.Int("triangle", body.At.Triangle),
			zap.Int("iterations", stats.Iterations),
			zap.Int("crossings", stats.Crossings),
			zap.Int("wall_hits", stats.WallHits))

		if (*every > 0 && frame%*every == 0) || frame == *frames {
			fmt.Printf("frame %4d  tri %5d  pos %s  up %s\n",
				frame, body.At.Triangle, formatVec(body.Position), formatVec(body.Up()))
		}
	}

	if exhausted > 0 {
		logger.Warn("walker fell short of its step on some frames",
			zap.Stringer("walker", body.ID),
			zap.Int("frames", exhausted),
			zap.Int("max_iterations", cfg.Walk.MaxIterations))
	}

	fmt.Println()
	fmt.Printf("Iterations: %d\n", total.Iterations)
	fmt.Printf("Crossings:  %d\n", total.Crossings)
	fmt.Printf("Wall hits:  %d\n", total.WallHits)
	fmt.Printf("Exhausted:  %d frames\n", exhausted)
}

func cmdGrid(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	n := fs.Int("n", 8, "Cells per side")
	size := fs.Float64("size", 1, "Cell size")
	name := fs.String("name", cfg.Data.MeshName, "Mesh name")
	fs.Parse(args)

	if fs.NArg() < 1 || *n < 1 {
		fmt.Fprintln(os.Stderr, "Usage: walktool grid [-n cells] [-size s] [-name mesh] <output.w>")
		os.Exit(1)
	}

	w := &formats.WalkMeshes{Meshes: []formats.WalkMeshData{gridMesh(*name, *n, float32(*size))}}
	if err := w.WriteFile(fs.Arg(0)); err != nil {
		logger.Fatal("failed to write walk mesh", zap.Error(err))
	}

	fmt.Printf("Wrote %s: %d triangles\n", fs.Arg(0), len(w.Meshes[0].Triangles))
}

func cmdConfig(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	out := fs.String("o", "", "Save to this file instead")
	fs.Parse(args)

	data, err := cfg.Marshal()
	if err != nil {
		logger.Fatal("failed to encode config", zap.Error(err))
	}
	fmt.Print(string(data))

	switch {
	case *out != "":
		err = cfg.SaveTo(*out)
	case *save:
		err = cfg.Save()
	default:
		return
	}
	if err != nil {
		logger.Fatal("failed to save config", zap.Error(err))
	}

	path := *out
	if path == "" {
		path = config.UserConfigPath()
	}
	logger.Info("config saved", zap.String("path", path))
}

// gridMesh builds an n x n grid of cells in the z=0 plane facing +Z.
func gridMesh(name string, n int, size float32) formats.WalkMeshData {
	d := formats.WalkMeshData{Name: name}
	row := uint32(n + 1)
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			d.Vertices = append(d.Vertices, [3]float32{float32(x) * size, float32(y) * size, 0})
			d.Normals = append(d.Normals, [3]float32{0, 0, 1})
		}
	}
	for y := uint32(0); y < uint32(n); y++ {
		for x := uint32(0); x < uint32(n); x++ {
			v00 := y*row + x
			v10 := v00 + 1
			v01 := v00 + row
			v11 := v01 + 1
			d.Triangles = append(d.Triangles, [3]uint32{v00, v10, v11}, [3]uint32{v00, v11, v01})
		}
	}
	return d
}

func walkParams(cfg *config.Config) motion.Params {
	return motion.Params{
		MaxIterations: cfg.Walk.MaxIterations,
		Bounce:        cfg.Walk.Bounce,
		Nudge:         cfg.Walk.Nudge,
	}
}

func parseVec3(s string) (mgl32.Vec3, error) {
	f, err := parseFloats(s, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, nil
}

func parseVec2(s string) (mgl32.Vec2, error) {
	f, err := parseFloats(s, 2)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{f[0], f[1]}, nil
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X(), v.Y(), v.Z())
}
