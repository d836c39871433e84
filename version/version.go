package version

// Version is the clinicstack release, overridden at build time with
// -ldflags "-X github.com/Daskott/clinicstack/version.Version=..."
var Version = "0.1.0"
