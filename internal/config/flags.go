package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagWalkMesh      = flag.String("walkmesh", "", "Path to walk mesh file (.w)")
	flagMesh          = flag.String("mesh", "", "Walk mesh name")
	flagMaxIterations = flag.Int("max-iterations", 0, "Integrator iteration cap")
	flagBounce        = flag.Float64("bounce", 0, "Wall bounce coefficient")
	flagNudge         = flag.Float64("nudge", -1, "Wall nudge coefficient")
	flagSpeed         = flag.Float64("speed", -1, "Walk speed in units per second")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWalkMesh != "" {
		cfg.Data.WalkMeshPath = *flagWalkMesh
	}
	if *flagMesh != "" {
		cfg.Data.MeshName = *flagMesh
	}
	if *flagMaxIterations > 0 {
		cfg.Walk.MaxIterations = *flagMaxIterations
	}
	if *flagBounce > 0 {
		cfg.Walk.Bounce = float32(*flagBounce)
	}
	// Zero is a valid nudge and speed, so negative means unset.
	if *flagNudge >= 0 {
		cfg.Walk.Nudge = float32(*flagNudge)
	}
	if *flagSpeed >= 0 {
		cfg.Walk.Speed = float32(*flagSpeed)
	}
}
