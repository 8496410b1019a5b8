package forceclose

import (
	"github.com/btcsuite/btclog/v2"

	"github.com/lnchan/core/lnutils"
)

var log btclog.Logger

func init() {
	UseLogger(lnutils.NewSubLogger("FRCL"))
}

// UseLogger sets the package-wide logger used by the force-close reactor.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all logging output from this package.
func DisableLog() {
	log = btclog.Disabled
}
