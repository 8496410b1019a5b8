package channelstate

import (
	"github.com/btcsuite/btclog/v2"

	"github.com/lnchan/core/lnutils"
)

// log is the package-level logger, disabled until a caller raises it with
// UseLogger. Every other package in the module follows this same pattern so
// callers can wire in whatever backend they want without a hard dependency
// on any particular logging library from here.
var log btclog.Logger

func init() {
	UseLogger(lnutils.NewSubLogger("CHST"))
}

// UseLogger sets the package-wide logger used by the channel state machine.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all logging output from this package.
func DisableLog() {
	log = btclog.Disabled
}
