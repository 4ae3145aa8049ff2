// SPDX-License-Identifier: MIT
//
// Package build holds the version metadata embedded with -ldflags:
//
//	go build -ldflags "-X talkulizer/pkg/build.buildName=talkulizer \
//	  -X talkulizer/pkg/build.buildTime=... \
//	  -X talkulizer/pkg/build.buildCommit=... \
//	  -X talkulizer/pkg/build.buildVersion=..."
//
// A binary built without any of the flags reports itself as a development
// build.
package build

import "fmt"

// Description is the one-line summary shown in the CLI help.
const Description = "Turns live audio into animated geometry for a 3D visualizer"

const devValue = "dev"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags for the version command.
func (f ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Dev reports whether the binary was built without ldflags.
func (f ldFlags) Dev() bool {
	return f.Version == devValue
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "talkulizer",
		Description: Description,
		Time:        devValue,
		Commit:      devValue,
		Version:     devValue,
	}
)

// Initialize copies the ldflags into the build information. It is a no-op
// when none are set and returns an error when only some are.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		return nil
	}
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
