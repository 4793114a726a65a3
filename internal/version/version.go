// SPDX-License-Identifier: Apache-2.0

// Package version holds build metadata, set with -ldflags at release time:
//
//	-X github.com/kusari-oss/ready/internal/version.Version=v1.2.3
//	-X github.com/kusari-oss/ready/internal/version.Commit=abc1234
package version

var (
	Version = "dev"
	Commit  = "none"
)
