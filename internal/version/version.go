// ABOUTME: Version and product identification
// ABOUTME: Version and Commit are overridden at build time with -ldflags
package version

// Product is the program name
const Product = "wavescrub"

var (
	// Version is the release version
	Version = "0.1.0"

	// Commit is the source revision the binary was built from
	Commit = "dev"
)

// String returns a one-line version banner
func String() string {
	return Product + " " + Version + " (" + Commit + ")"
}
