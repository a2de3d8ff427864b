package weave

import "fmt"

// Release of this module. Suffix marks builds that are not tagged.
const (
	Maj    = 0
	Min    = 1
	Fix    = 0
	Suffix = "-dev"
)

// GitCommit is filled in at build time with
//
//	-ldflags "-X github.com/iov-one/vestengine.GitCommit=<hash>"
var GitCommit = ""

// Version returns the release, followed by the commit when known.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)
	if GitCommit == "" {
		return v
	}
	return v + " " + GitCommit
}
