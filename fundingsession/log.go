package fundingsession

import (
	"github.com/btcsuite/btclog/v2"

	"github.com/lnchan/core/lnutils"
)

var log btclog.Logger

func init() {
	UseLogger(lnutils.NewSubLogger("FNDG"))
}

// UseLogger sets the package-wide logger used during interactive-tx rounds.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all logging output from this package.
func DisableLog() {
	log = btclog.Disabled
}
