// Package version carries the compiler's release identifier, used by the
// CLI banner.
package version

const Version = "0.1.0"

func GetVersion() string {
	return Version
}
