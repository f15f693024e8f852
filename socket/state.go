package socket

// socketState tracks a socket's lifecycle stage. All transitions are
// one-way: a failed transition releases the descriptor and moves the
// socket straight to stateClosed, so retrying requires constructing a
// fresh socket. Every state-dependent operation checks the state first
// and returns one of the named wrong-state errors.
type socketState int

const (
	stateUnbound socketState = iota
	stateBound
	stateConnected
	stateNotReady
	stateReady
	stateClosed
)

func (s socketState) String() string {
	switch s {
	case stateUnbound:
		return "unbound"
	case stateBound:
		return "bound"
	case stateConnected:
		return "connected"
	case stateNotReady:
		return "not-ready"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
