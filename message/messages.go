package message

import (
	"strconv"

	"github.com/google/uuid"
)

// MsgType is the protocol message type id transmitted in the top level "type" field.
type MsgType int

const (
	TypeSessionRequest       MsgType = 110
	TypeSessionReply         MsgType = 150
	TypeTransferRequest      MsgType = 310
	TypeTransferReply        MsgType = 330
	TypeTransferDispatch     MsgType = 510
	TypeTransferConfirmation MsgType = 550
	TypeTermination          MsgType = 910
)

// String returns the message kind name.
func (t MsgType) String() string {
	switch t {
	case TypeSessionRequest:
		return "SessionRequest"
	case TypeSessionReply:
		return "SessionReply"
	case TypeTransferRequest:
		return "TransferRequest"
	case TypeTransferReply:
		return "TransferReply"
	case TypeTransferDispatch:
		return "TransferDispatch"
	case TypeTransferConfirmation:
		return "TransferConfirmation"
	case TypeTermination:
		return "Termination"
	}
	return "Unknown"
}

// SessionReplyCode enumerates SessionReply message codes. Codes are part of
// the cross-VASP wire contract and are transmitted as decimal-digit strings.
type SessionReplyCode int

const (
	SessionAccepted                                      SessionReplyCode = 1
	SessionDeclinedRequestNotValid                       SessionReplyCode = 2
	SessionDeclinedOriginatorVaspCouldNotBeAuthenticated SessionReplyCode = 3
	SessionDeclinedOriginatorVaspDeclined                SessionReplyCode = 4
	SessionDeclinedTemporaryDisruptionOfService          SessionReplyCode = 5
)

func (c SessionReplyCode) Wire() string { return strconv.Itoa(int(c)) }

// TransferReplyCode enumerates TransferReply message codes.
type TransferReplyCode int

const (
	TransferAccepted                             TransferReplyCode = 1
	TransferDeclinedRequestNotValid              TransferReplyCode = 2
	TransferDeclinedNoSuchBeneficiary            TransferReplyCode = 3
	TransferDeclinedVirtualAssetNotSupported     TransferReplyCode = 4
	TransferDeclinedTransferNotAuthorized        TransferReplyCode = 5
	TransferDeclinedTemporaryDisruptionOfService TransferReplyCode = 6
)

func (c TransferReplyCode) Wire() string { return strconv.Itoa(int(c)) }

// TransferConfirmationCode enumerates TransferConfirmation message codes.
type TransferConfirmationCode int

const (
	TransferConfirmed                            TransferConfirmationCode = 1
	TransferNotConfirmedDispatchNotValid         TransferConfirmationCode = 2
	TransferNotConfirmedAssetsNotReceived        TransferConfirmationCode = 3
	TransferNotConfirmedWrongAmount              TransferConfirmationCode = 4
	TransferNotConfirmedWrongAsset               TransferConfirmationCode = 5
	TransferNotConfirmedTransactionDataMissmatch TransferConfirmationCode = 6
)

func (c TransferConfirmationCode) Wire() string { return strconv.Itoa(int(c)) }

// TerminationCode enumerates Termination message codes.
type TerminationCode int

const (
	SessionClosedTransferOccured                   TerminationCode = 1
	SessionClosedTransferDeclinedByBeneficiaryVasp TerminationCode = 2
	SessionClosedTransferCancelledByOriginator     TerminationCode = 3
)

func (c TerminationCode) Wire() string { return strconv.Itoa(int(c)) }

// Msg is the closed set of the seven protocol message kinds.
type Msg interface {
	Type() MsgType
	Envelope() Envelope
}

// SessionRequest opens a session between two VASPs.
type SessionRequest struct {
	MsgType   MsgType          `json:"type"`
	Comment   string           `json:"comment"`
	Msg       Envelope         `json:"msg"`
	Handshake HandshakeRequest `json:"handshake"`
	VASP      VaspInformation  `json:"vasp"`
}

func (m SessionRequest) Type() MsgType      { return TypeSessionRequest }
func (m SessionRequest) Envelope() Envelope { return m.Msg }

// NewSessionRequest creates a SessionRequest for the given session.
func NewSessionRequest(sessionID string, handshake HandshakeRequest, vasp VaspInformation) SessionRequest {
	return SessionRequest{
		MsgType:   TypeSessionRequest,
		Msg:       Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: "1"},
		Handshake: handshake,
		VASP:      vasp,
	}
}

// SessionReply accepts or declines a requested session.
type SessionReply struct {
	MsgType   MsgType           `json:"type"`
	Comment   string            `json:"comment"`
	Msg       Envelope          `json:"msg"`
	Handshake HandshakeResponse `json:"handshake"`
	VASP      VaspInformation   `json:"vasp"`
}

func (m SessionReply) Type() MsgType      { return TypeSessionReply }
func (m SessionReply) Envelope() Envelope { return m.Msg }

// NewSessionReply creates a SessionReply carrying the given reply code.
func NewSessionReply(sessionID string, code SessionReplyCode, handshake HandshakeResponse, vasp VaspInformation) SessionReply {
	return SessionReply{
		MsgType:   TypeSessionReply,
		Msg:       Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: code.Wire()},
		Handshake: handshake,
		VASP:      vasp,
	}
}

// TransferRequest asks the beneficiary VASP to allow a virtual asset transfer.
type TransferRequest struct {
	MsgType     MsgType         `json:"type"`
	Comment     string          `json:"comment"`
	Msg         Envelope        `json:"msg"`
	Originator  Originator      `json:"originator"`
	Beneficiary Beneficiary     `json:"beneficiary"`
	Transfer    TransferDetails `json:"transfer"`
	VASP        VaspInformation `json:"vasp"`
}

func (m TransferRequest) Type() MsgType      { return TypeTransferRequest }
func (m TransferRequest) Envelope() Envelope { return m.Msg }

// NewTransferRequest creates a TransferRequest for the given session.
func NewTransferRequest(sessionID string, originator Originator, beneficiary Beneficiary, transfer TransferDetails, vasp VaspInformation) TransferRequest {
	return TransferRequest{
		MsgType:     TypeTransferRequest,
		Msg:         Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: "1"},
		Originator:  originator,
		Beneficiary: beneficiary,
		Transfer:    transfer,
		VASP:        vasp,
	}
}

// TransferReply allows or forbids a requested transfer.
type TransferReply struct {
	MsgType     MsgType              `json:"type"`
	Comment     string               `json:"comment"`
	Msg         Envelope             `json:"msg"`
	Originator  Originator           `json:"originator"`
	Beneficiary Beneficiary          `json:"beneficiary"`
	Transfer    TransferReplyDetails `json:"transfer"`
	VASP        VaspInformation      `json:"vasp"`
}

func (m TransferReply) Type() MsgType      { return TypeTransferReply }
func (m TransferReply) Envelope() Envelope { return m.Msg }

// NewTransferReply creates a TransferReply carrying the given reply code.
func NewTransferReply(sessionID string, code TransferReplyCode, originator Originator, beneficiary Beneficiary, transfer TransferReplyDetails, vasp VaspInformation) TransferReply {
	return TransferReply{
		MsgType:     TypeTransferReply,
		Msg:         Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: code.Wire()},
		Originator:  originator,
		Beneficiary: beneficiary,
		Transfer:    transfer,
		VASP:        vasp,
	}
}

// TransferDispatch notifies the beneficiary VASP of the executed blockchain transfer.
type TransferDispatch struct {
	MsgType     MsgType               `json:"type"`
	Comment     string                `json:"comment"`
	Msg         Envelope              `json:"msg"`
	Originator  Originator            `json:"originator"`
	Beneficiary Beneficiary           `json:"beneficiary"`
	Transfer    TransferReplyDetails  `json:"transfer"`
	Transaction BlockchainTransaction `json:"transaction"`
	VASP        VaspInformation       `json:"vasp"`
}

func (m TransferDispatch) Type() MsgType      { return TypeTransferDispatch }
func (m TransferDispatch) Envelope() Envelope { return m.Msg }

// NewTransferDispatch creates a TransferDispatch for the given session.
func NewTransferDispatch(sessionID string, originator Originator, beneficiary Beneficiary, transfer TransferReplyDetails, transaction BlockchainTransaction, vasp VaspInformation) TransferDispatch {
	return TransferDispatch{
		MsgType:     TypeTransferDispatch,
		Msg:         Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: "1"},
		Originator:  originator,
		Beneficiary: beneficiary,
		Transfer:    transfer,
		Transaction: transaction,
		VASP:        vasp,
	}
}

// TransferConfirmation confirms or rejects the dispatched transfer.
type TransferConfirmation struct {
	MsgType     MsgType               `json:"type"`
	Comment     string                `json:"comment"`
	Msg         Envelope              `json:"msg"`
	Originator  Originator            `json:"originator"`
	Beneficiary Beneficiary           `json:"beneficiary"`
	Transfer    TransferReplyDetails  `json:"transfer"`
	Transaction BlockchainTransaction `json:"transaction"`
	VASP        VaspInformation       `json:"vasp"`
}

func (m TransferConfirmation) Type() MsgType      { return TypeTransferConfirmation }
func (m TransferConfirmation) Envelope() Envelope { return m.Msg }

// NewTransferConfirmation creates a TransferConfirmation carrying the given code.
func NewTransferConfirmation(sessionID string, code TransferConfirmationCode, originator Originator, beneficiary Beneficiary, transfer TransferReplyDetails, transaction BlockchainTransaction, vasp VaspInformation) TransferConfirmation {
	return TransferConfirmation{
		MsgType:     TypeTransferConfirmation,
		Msg:         Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: code.Wire()},
		Originator:  originator,
		Beneficiary: beneficiary,
		Transfer:    transfer,
		Transaction: transaction,
		VASP:        vasp,
	}
}

// Termination closes a session.
type Termination struct {
	MsgType MsgType         `json:"type"`
	Comment string          `json:"comment"`
	Msg     Envelope        `json:"msg"`
	VASP    VaspInformation `json:"vasp"`
}

func (m Termination) Type() MsgType      { return TypeTermination }
func (m Termination) Envelope() Envelope { return m.Msg }

// NewTermination creates a Termination carrying the given closure code.
func NewTermination(sessionID string, code TerminationCode, vasp VaspInformation) Termination {
	return Termination{
		MsgType: TypeTermination,
		Msg:     Envelope{MessageID: uuid.NewString(), SessionID: sessionID, MessageCode: code.Wire()},
		VASP:    vasp,
	}
}
