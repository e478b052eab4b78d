// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides a single location to house the version information
// for the utilities provided in this repository.
package version

import (
	"fmt"
	"regexp"
	"strings"
)

// semverRE matches a full semantic version string.
var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*` +
	`[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// Version is the application version per the semantic versioning 2.0.0 spec
// (https://semver.org/).
//
// It is defined as a variable so it can be overridden during the build process
// with:
// '-ldflags "-X github.com/decred/ctrrand/internal/version.Version=fullsemver"'
// if needed.
var Version = "0.1.0-pre"

func init() {
	if !semverRE.MatchString(Version) {
		panic(fmt.Sprintf("malformed version string %q: does not conform "+
			"to semver specification", Version))
	}
}

// withCommit returns the version with the commit added as build metadata when
// the version does not carry build metadata already.
func withCommit(version, commit string) string {
	if commit == "" || strings.Contains(version, "+") {
		return version
	}
	return version + "+" + commit
}

// String returns the application version as a properly formed string per the
// semantic versioning 2.0.0 spec (https://semver.org/).  Builds from a version
// control checkout include the short commit id as build metadata.
func String() string {
	return withCommit(Version, vcsCommitID())
}
