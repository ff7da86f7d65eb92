package message

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrUnknownMessageType  = errors.New("unknown message type")
	ErrEnvelopeIncomplete  = errors.New("message envelope is incomplete")
	ErrMessageCodeNotDigit = errors.New("message code is not a decimal digit string")
)

// Encode serializes the message to UTF-8 JSON and hex encodes it with the 0x
// prefix for relay transmission.
func Encode(m Msg) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", errors.Join(ErrMalformedPayload, err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}

type probe struct {
	MsgType MsgType  `json:"type"`
	Msg     Envelope `json:"msg"`
}

// Decode hex decodes the relay payload, parses the JSON and dispatches by the
// top level type id over the closed set of the seven message kinds.
func Decode(payload string) (Msg, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(payload, "0x"))
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if err := verifyEnvelope(p.Msg); err != nil {
		return nil, err
	}

	switch p.MsgType {
	case TypeSessionRequest:
		var m SessionRequest
		return m, unmarshalInto(raw, &m)
	case TypeSessionReply:
		var m SessionReply
		return m, unmarshalInto(raw, &m)
	case TypeTransferRequest:
		var m TransferRequest
		return m, unmarshalInto(raw, &m)
	case TypeTransferReply:
		var m TransferReply
		return m, unmarshalInto(raw, &m)
	case TypeTransferDispatch:
		var m TransferDispatch
		return m, unmarshalInto(raw, &m)
	case TypeTransferConfirmation:
		var m TransferConfirmation
		return m, unmarshalInto(raw, &m)
	case TypeTermination:
		var m Termination
		return m, unmarshalInto(raw, &m)
	}
	return nil, errors.Join(ErrUnknownMessageType, fmt.Errorf("type id [ %d ]", p.MsgType))
}

func unmarshalInto(raw []byte, m any) error {
	if err := json.Unmarshal(raw, m); err != nil {
		return errors.Join(ErrMalformedPayload, err)
	}
	return nil
}

func verifyEnvelope(e Envelope) error {
	if e.MessageID == "" || e.SessionID == "" || e.MessageCode == "" {
		return ErrEnvelopeIncomplete
	}
	for _, r := range e.MessageCode {
		if r < '0' || r > '9' {
			return ErrMessageCodeNotDigit
		}
	}
	return nil
}
