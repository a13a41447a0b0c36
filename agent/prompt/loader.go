package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/coordinator.txt
var coordinatorRaw string

// Coordinator returns the system instruction for the support coordinator.
// The embed is compile-time; trimming is cheap and safe to call repeatedly.
func Coordinator() string {
	return strings.TrimSpace(coordinatorRaw)
}
