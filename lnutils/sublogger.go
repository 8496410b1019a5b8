package lnutils

import (
	"os"
	"sync"

	"github.com/btcsuite/btclog/v2"
)

var (
	backendMu sync.Mutex
	backend   btclog.Handler
)

// defaultHandler lazily builds the process-wide console handler that every
// subsystem logger multiplexes onto, mirroring the single rotating backend
// pattern the daemon build normally wires up.
func defaultHandler() btclog.Handler {
	backendMu.Lock()
	defer backendMu.Unlock()

	if backend == nil {
		backend = btclog.NewDefaultHandler(os.Stdout)
	}

	return backend
}

// NewSubLogger returns a logger for the named subsystem, backed by the
// shared console handler and disabled (Info level suppressed to Off) until a
// caller explicitly raises it with SetLevel. Packages assign the result to
// their own package-level "log" var during init.
func NewSubLogger(subsystem string) btclog.Logger {
	logger := btclog.NewSLogger(defaultHandler()).SubSystem(subsystem)
	logger.SetLevel(btclog.LevelOff)

	return logger
}
