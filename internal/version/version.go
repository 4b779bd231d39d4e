package version

// Package version holds the Expresso build metadata descriptor. The
// descriptor fields are compile-time constants; BuildDate and Commit describe
// the Go build itself and are stamped via ldflags.

const (
	// VersionString is the four-part product and file version.
	VersionString = "4.7.4.0"
	// Company is the publisher shown in the binary's file properties.
	Company = "Northwest Logic, Inc."
	// CopyrightRange is the year range prefixed to the company in the copyright notice.
	CopyrightRange = "2005-2017"
	// Product is the product name shown in the binary's file properties.
	Product = "Expresso PciExpress"
)

const (
	defaultBuildDate = "unknown"
	defaultCommit    = "none"
)

var (
	// BuildDate is the UTC timestamp when the binary was built.
	BuildDate = defaultBuildDate
	// Commit is the source revision the binary was built from.
	Commit = defaultCommit
)

// Copyright returns the full copyright notice.
func Copyright() string {
	return CopyrightRange + " " + Company
}

// Summary returns a human-readable description of the build metadata.
func Summary() string {
	return Product + " " + VersionString + " (built " + BuildDate + ", commit " + Commit + ")"
}
