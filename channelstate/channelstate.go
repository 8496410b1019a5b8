// Package channelstate implements the top-level channel state machine
// (§4.3): the finite set of states a channel moves through from opening to
// closure, the splice/RBF sub-state carried within Normal, and the
// channel_reestablish retransmission rules exercised on reconnection.
package channelstate

// State is one of the channel's top-level lifecycle states.
type State uint8

const (
	// StateOpening covers the interactive-tx contribution round, before
	// any funding transaction exists.
	StateOpening State = iota

	// StateAwaitingFundingConfirmation is entered once both parties have
	// exchanged signatures and the funding transaction has been
	// broadcast, but has not yet reached min-depth.
	StateAwaitingFundingConfirmation

	// StateAwaitingChannelReady is entered once the funding transaction
	// has reached min-depth locally, waiting for the peer's
	// channel_ready before the channel is usable.
	StateAwaitingChannelReady

	// StateNormal is the channel's steady-state: HTLCs may be added,
	// settled, and failed, and splices/RBF attempts may be started.
	StateNormal

	// StateShutdown means a cooperative close has been requested by
	// either side but a closing fee has not yet been agreed.
	StateShutdown

	// StateNegotiating means both sides have exchanged shutdown and are
	// exchanging closing_signed fee proposals.
	StateNegotiating

	// StateClosing means a mutual close transaction has been agreed and
	// broadcast, awaiting confirmation.
	StateClosing

	// StateForceClosing means a commitment transaction (local, remote,
	// or a revoked breach) has been broadcast, and the force-close
	// reaction engine (§4.5) is resolving outputs.
	StateForceClosing

	// StateClosed is the terminal state: every output of the closing
	// transaction has either paid out or been swept.
	StateClosed

	// StateOffline means the peer connection is down. It is orthogonal
	// to the other states in the sense that it can interrupt any of
	// them, but is tracked separately here since only Normal (and its
	// splice/RBF sub-state) needs to survive it intact.
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "Opening"
	case StateAwaitingFundingConfirmation:
		return "AwaitingFundingConfirmation"
	case StateAwaitingChannelReady:
		return "AwaitingChannelReady"
	case StateNormal:
		return "Normal"
	case StateShutdown:
		return "Shutdown"
	case StateNegotiating:
		return "Negotiating"
	case StateClosing:
		return "Closing"
	case StateForceClosing:
		return "ForceClosing"
	case StateClosed:
		return "Closed"
	case StateOffline:
		return "Offline"
	default:
		return "unknown state"
	}
}

// SpliceState is the sub-state Normal carries while a splice is underway.
type SpliceState uint8

const (
	// NoSplice means no splice is in progress.
	NoSplice SpliceState = iota

	// SpliceRequested means splice_init/splice_ack has been sent or
	// received, but the interactive-tx round has not started.
	SpliceRequested

	// SpliceInProgress means the interactive-tx round is underway.
	SpliceInProgress

	// SpliceWaitingForSigs means tx_complete has been exchanged and this
	// party is waiting on (or composing) commit_sig/tx_signatures.
	SpliceWaitingForSigs
)

func (s SpliceState) String() string {
	switch s {
	case NoSplice:
		return "NoSplice"
	case SpliceRequested:
		return "SpliceRequested"
	case SpliceInProgress:
		return "SpliceInProgress"
	case SpliceWaitingForSigs:
		return "SpliceWaitingForSigs"
	default:
		return "unknown splice state"
	}
}

// RBFState is the RBF analog of SpliceState: an RBF attempt is a fresh
// interactive-tx round contributing a higher-feerate version of the same
// pending funding output, so it moves through the same three live phases.
type RBFState uint8

const (
	NoRBF RBFState = iota
	RBFRequested
	RBFInProgress
	RBFWaitingForSigs
)

func (s RBFState) String() string {
	switch s {
	case NoRBF:
		return "NoRBF"
	case RBFRequested:
		return "RBFRequested"
	case RBFInProgress:
		return "RBFInProgress"
	case RBFWaitingForSigs:
		return "RBFWaitingForSigs"
	default:
		return "unknown RBF state"
	}
}

// SessionID identifies an in-progress interactive funding session (§4.4) so
// the splice/RBF sub-state can name which session it refers to without this
// package importing fundingsession directly (neither package imports the
// other).
type SessionID [32]byte

// Sub bundles the splice/RBF sub-state carried within Normal. It is the Go
// analog of the spec's SpliceWaitingForSigs(session) parameterized state:
// the active session id is carried alongside the sub-state rather than
// folded into the enum itself.
type Sub struct {
	Splice   SpliceState
	SpliceID SessionID

	RBF   RBFState
	RBFID SessionID
}

// EventKind names the category of trigger that can drive a transition,
// matching the five trigger kinds §4.3 lists.
type EventKind uint8

const (
	EventPeerMessage EventKind = iota
	EventLocalCommand
	EventChainEvent
	EventTimer
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventPeerMessage:
		return "PeerMessage"
	case EventLocalCommand:
		return "LocalCommand"
	case EventChainEvent:
		return "ChainEvent"
	case EventTimer:
		return "Timer"
	case EventDisconnect:
		return "Disconnect"
	default:
		return "unknown event kind"
	}
}

// Event is one trigger presented to the state machine. Name is a
// caller-defined tag (a wire.MessageType's String(), a command name, a
// chain-event tag) that the transition table matches, together with Kind,
// to select a transition; it is also logged.
type Event struct {
	Kind EventKind
	Name string
}

// Transition is the total-function result of stepping the machine once:
// the new top-level state, the (possibly updated) splice/RBF sub-state, and
// any actions the caller must carry out — nothing here performs I/O itself.
type Transition struct {
	Next  State
	Sub   Sub
	Actions []Action
}

// ActionKind names what an Action instructs the caller to do.
type ActionKind uint8

const (
	// ActionSendMessage instructs the caller to send Message.
	ActionSendMessage ActionKind = iota

	// ActionPersist instructs the caller to durably record the new
	// state before any message in the same Transition is sent, per the
	// general rule that state changes are committed before they are
	// externally observable.
	ActionPersist

	// ActionPublishTx instructs the caller to publish TxPayload via the
	// chain publisher.
	ActionPublishTx

	// ActionStartForceClose instructs the caller to hand the channel to
	// the force-close reaction engine.
	ActionStartForceClose
)

// Action is one side effect a Transition asks the caller to perform.
type Action struct {
	Kind    ActionKind
	Message interface{}
	TxPayload []byte
}

// Machine holds one channel's current top-level state and splice/RBF
// sub-state, and applies events to it. It mirrors funding/manager.go's
// stateStep pattern of separating "what state are we in" from "what do we
// do about it", generalized from that function's three-state open flow to
// the full ten-state lifecycle.
type Machine struct {
	state State
	sub   Sub
}

// NewMachine returns a Machine starting in StateOpening, the state every
// channel begins in.
func NewMachine() *Machine {
	return &Machine{state: StateOpening}
}

// State returns the machine's current top-level state.
func (m *Machine) State() State { return m.state }

// Sub returns the machine's current splice/RBF sub-state.
func (m *Machine) Sub() Sub { return m.sub }

// Step applies ev to the machine, updating its internal state and
// returning the Transition describing what happened. Unrecognized
// (state, event) combinations are a no-op transition to the same state,
// mirroring stateStep's default case of returning nil rather than
// panicking on an event that simply doesn't apply yet.
func (m *Machine) Step(ev Event) Transition {
	from := m.state
	t := m.step(ev)
	m.state = t.Next
	m.sub = t.Sub

	if t.Next != from {
		log.Debugf("channel state transition %v -> %v on %v/%v", from,
			t.Next, ev.Kind, ev.Name)
	} else {
		log.Tracef("channel state %v unaffected by %v/%v", from,
			ev.Kind, ev.Name)
	}

	for _, action := range t.Actions {
		if action.Kind == ActionStartForceClose {
			log.Warnf("channel in state %v handing off to "+
				"force-close reaction", from)
		}
	}

	return t
}

func (m *Machine) step(ev Event) Transition {
	sub := m.sub

	if ev.Kind == EventDisconnect {
		return Transition{Next: StateOffline, Sub: sub}
	}

	switch m.state {
	case StateOpening:
		if ev.Kind == EventChainEvent && ev.Name == "funding_broadcast" {
			return Transition{Next: StateAwaitingFundingConfirmation, Sub: sub}
		}

	case StateAwaitingFundingConfirmation:
		if ev.Kind == EventChainEvent && ev.Name == "funding_confirmed" {
			return Transition{
				Next: StateAwaitingChannelReady,
				Sub:  sub,
				Actions: []Action{
					{Kind: ActionPersist},
				},
			}
		}

	case StateAwaitingChannelReady:
		if ev.Kind == EventPeerMessage && ev.Name == "channel_ready" {
			return Transition{Next: StateNormal, Sub: sub}
		}

	case StateNormal:
		if t, ok := m.stepNormal(ev); ok {
			return t
		}

	case StateShutdown:
		if ev.Kind == EventPeerMessage && ev.Name == "shutdown" {
			return Transition{Next: StateNegotiating, Sub: sub}
		}

	case StateNegotiating:
		if ev.Kind == EventPeerMessage && ev.Name == "closing_signed_accepted" {
			return Transition{
				Next: StateClosing,
				Sub:  sub,
				Actions: []Action{
					{Kind: ActionPublishTx},
				},
			}
		}

	case StateClosing:
		if ev.Kind == EventChainEvent && ev.Name == "close_confirmed" {
			return Transition{Next: StateClosed, Sub: sub}
		}

	case StateForceClosing:
		if ev.Kind == EventChainEvent && ev.Name == "all_outputs_resolved" {
			return Transition{Next: StateClosed, Sub: sub}
		}

	case StateOffline:
		if ev.Kind == EventPeerMessage && ev.Name == "reconnected" {
			return Transition{Next: StateNormal, Sub: sub}
		}
	}

	// Any state may be forced closed by a local command or an
	// observation of an unexpected commitment on chain.
	if ev.Kind == EventLocalCommand && ev.Name == "force_close" ||
		ev.Kind == EventChainEvent && ev.Name == "commitment_broadcast_observed" {

		return Transition{
			Next: StateForceClosing,
			Sub:  sub,
			Actions: []Action{
				{Kind: ActionStartForceClose},
			},
		}
	}

	return Transition{Next: m.state, Sub: sub}
}

// stepNormal handles StateNormal's own event set, including the
// splice/RBF sub-state transitions, so Step's main switch stays flat.
func (m *Machine) stepNormal(ev Event) (Transition, bool) {
	sub := m.sub

	switch ev.Kind {
	case EventLocalCommand:
		switch ev.Name {
		case "splice_start":
			if sub.Splice == NoSplice {
				sub.Splice = SpliceRequested
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "rbf_start":
			if sub.RBF == NoRBF {
				sub.RBF = RBFRequested
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "shutdown_start":
			return Transition{Next: StateShutdown, Sub: sub}, true
		}

	case EventPeerMessage:
		switch ev.Name {
		case "splice_ack":
			if sub.Splice == SpliceRequested {
				sub.Splice = SpliceInProgress
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "tx_complete":
			if sub.Splice == SpliceInProgress {
				sub.Splice = SpliceWaitingForSigs
				return Transition{Next: StateNormal, Sub: sub}, true
			}
			if sub.RBF == RBFInProgress {
				sub.RBF = RBFWaitingForSigs
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "splice_locked":
			if sub.Splice == SpliceWaitingForSigs {
				sub.Splice = NoSplice
				sub.SpliceID = SessionID{}
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "tx_ack_rbf":
			if sub.RBF == RBFRequested {
				sub.RBF = RBFInProgress
				return Transition{Next: StateNormal, Sub: sub}, true
			}
		case "shutdown":
			return Transition{Next: StateShutdown, Sub: sub}, true
		case "tx_abort":
			sub.Splice = NoSplice
			sub.SpliceID = SessionID{}
			sub.RBF = NoRBF
			sub.RBFID = SessionID{}
			return Transition{Next: StateNormal, Sub: sub}, true
		}
	}

	return Transition{}, false
}
