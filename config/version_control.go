package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executible
	Main_version = "v0.3.0"

	// Modular tools
	Benchmark    = "v1.0.0"
	DAMO         = "v0.3.0"
	Site_Scan    = "v0.2.0"
	Motif_Sim    = "v0.2.0"
	History      = "v0.1.0"
	Sanity_check = "v1.1.0"
)
