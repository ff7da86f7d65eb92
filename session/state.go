package session

// Role tells which side of the protocol exchange this node plays for a session.
type Role int

const (
	RoleOriginator Role = iota
	RoleBeneficiary
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleOriginator {
		return "originator"
	}
	return "beneficiary"
}

// State is the protocol state of a single session.
type State int

const (
	StateCreated State = iota
	StateSessionRequested
	StateSessionConfirmed
	StateSessionDeclined
	StateTransferRequested
	StateTransferAllowed
	StateTransferForbidden
	StateTransferDispatched
	StateTransferConfirmed
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateSessionRequested:
		return "SessionRequested"
	case StateSessionConfirmed:
		return "SessionConfirmed"
	case StateSessionDeclined:
		return "SessionDeclined"
	case StateTransferRequested:
		return "TransferRequested"
	case StateTransferAllowed:
		return "TransferAllowed"
	case StateTransferForbidden:
		return "TransferForbidden"
	case StateTransferDispatched:
		return "TransferDispatched"
	case StateTransferConfirmed:
		return "TransferConfirmed"
	case StateTerminated:
		return "Terminated"
	}
	return "Unknown"
}

// Terminal reports whether no further transition can leave the state.
func (s State) Terminal() bool {
	switch s {
	case StateSessionDeclined, StateTransferForbidden, StateTransferConfirmed, StateTerminated:
		return true
	}
	return false
}
