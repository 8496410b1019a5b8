// Package lnutils collects small helpers shared by the logging call sites
// scattered across the engine's packages: lazily-evaluated log closures and
// slog attribute constructors for the identifiers that show up most often in
// commitment and funding traces.
package lnutils

import (
	"log/slog"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btclog/v2"
	"github.com/davecgh/go-spew/spew"

	corewire "github.com/lnchan/core/wire"
)

// LogClosure defers a string-producing function until the logger actually
// decides to format it, so callers can pass expensive representations to
// Debugf/Tracef without paying for them at Info level and above.
type LogClosure func() string

// String invokes the underlying function and returns the result.
func (c LogClosure) String() string {
	return c()
}

// NewLogClosure wraps a closure so it satisfies fmt.Stringer.
func NewLogClosure(c func() string) LogClosure {
	return LogClosure(c)
}

// SpewLogClosure dumps a value with spew.Sdump inside a LogClosure, useful
// for logging a full commitment spec or wire message only when tracing.
func SpewLogClosure(a any) LogClosure {
	return func() string {
		return spew.Sdump(a)
	}
}

// NewSeparatorClosure returns a closure that renders a divider line, used to
// visually break up dense trace output around a state transition.
func NewSeparatorClosure() LogClosure {
	return func() string {
		return strings.Repeat("=", 80)
	}
}

// LogPubKey renders a public key as a compressed-hex slog attribute,
// tolerating a nil key so callers don't need to guard every call site.
func LogPubKey(key string, pubKey *btcec.PublicKey) slog.Attr {
	if pubKey == nil {
		return btclog.Fmt(key, "<nil>")
	}

	return btclog.Hex6(key, pubKey.SerializeCompressed())
}

// LogChannelID renders a channel identifier as a hex slog attribute.
func LogChannelID(key string, chanID corewire.ChannelID) slog.Attr {
	return btclog.Fmt(key, chanID.String())
}
