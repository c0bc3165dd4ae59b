package tlrouter

// Version information for tlrouter.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/tlrouter.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "tlrouter"

	// Description is a short description of the application.
	Description = "Vendor-neutral AI translation with fallback routing"

	// Version is the semantic version of the application.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/tlrouter"
)

// Build information, typically set via ldflags.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent to vendors.
func UserAgent() string {
	return Name + "/" + Version
}
