package transfers

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openvasp/openvasp-host/message"
)

var (
	ErrNotFound              = errors.New("transaction not found")
	ErrAmountNotPositive     = errors.New("transfer amount is not a positive number")
	ErrOriginatorAmbiguous   = errors.New("originator matches more than one of natural person, juridical person or bank")
	ErrOriginatorUnclassifed = errors.New("originator is neither a natural person, a juridical person nor a bank")
)

// Type tells which side of the transfer this host plays for a transaction.
type Type int

const (
	TypeOutgoing Type = iota + 1
	TypeIncoming
)

// String returns Type in a human readable form.
func (t Type) String() string {
	switch t {
	case TypeOutgoing:
		return "Outgoing"
	case TypeIncoming:
		return "Incoming"
	default:
		return "Unknown"
	}
}

// Status mirrors the protocol progress of the session that carries the
// transaction. It only ever moves forward.
type Status int

const (
	StatusCreated Status = iota
	StatusSessionRequested
	StatusSessionDeclined
	StatusSessionConfirmed
	StatusTransferRequested
	StatusTransferForbidden
	StatusTransferAllowed
	StatusTransferDispatched
	StatusTransferConfirmed
	StatusClosed
)

// String returns Status in a human readable form.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusSessionRequested:
		return "SessionRequested"
	case StatusSessionDeclined:
		return "SessionDeclined"
	case StatusSessionConfirmed:
		return "SessionConfirmed"
	case StatusTransferRequested:
		return "TransferRequested"
	case StatusTransferForbidden:
		return "TransferForbidden"
	case StatusTransferAllowed:
		return "TransferAllowed"
	case StatusTransferDispatched:
		return "TransferDispatched"
	case StatusTransferConfirmed:
		return "TransferConfirmed"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Transaction is the application facing projection of one travel rule
// transfer. It is updated from session events and stored in the repository.
type Transaction struct {
	ID                  string                  `json:"id"                    bson:"_id"                   db:"id"`
	SessionID           string                  `json:"session_id"            bson:"session_id"            db:"session_id"`
	Type                Type                    `json:"type"                  bson:"type"                  db:"type"`
	Status              Status                  `json:"status"                bson:"status"                db:"status"`
	Asset               message.VirtualAsset    `json:"asset"                 bson:"asset"                 db:"asset"`
	Amount              decimal.Decimal         `json:"amount"                bson:"amount"                db:"amount"`
	OriginatorName      string                  `json:"originator_name"       bson:"originator_name"       db:"originator_name"`
	OriginatorVaan      string                  `json:"originator_vaan"       bson:"originator_vaan"       db:"originator_vaan"`
	BeneficiaryName     string                  `json:"beneficiary_name"      bson:"beneficiary_name"      db:"beneficiary_name"`
	BeneficiaryVaan     string                  `json:"beneficiary_vaan"      bson:"beneficiary_vaan"      db:"beneficiary_vaan"`
	PeerVaspID          string                  `json:"peer_vasp_id"          bson:"peer_vasp_id"          db:"peer_vasp_id"`
	DestinationAddress  string                  `json:"destination_address"   bson:"destination_address"   db:"destination_address"`
	SendingAddress      string                  `json:"sending_address"       bson:"sending_address"       db:"sending_address"`
	TransactionHash     string                  `json:"transaction_hash"      bson:"transaction_hash"      db:"transaction_hash"`
	TransferredAt       time.Time               `json:"transferred_at"        bson:"transferred_at"        db:"transferred_at"`
	SessionDeclineCode  string                  `json:"session_decline_code"  bson:"session_decline_code"  db:"session_decline_code"`
	TransferDeclineCode string                  `json:"transfer_decline_code" bson:"transfer_decline_code" db:"transfer_decline_code"`
	ConfirmationCode    string                  `json:"confirmation_code"     bson:"confirmation_code"     db:"confirmation_code"`
	TerminationCode     string                  `json:"termination_code"      bson:"termination_code"      db:"termination_code"`
	CreatedAt           time.Time               `json:"created_at"            bson:"created_at"            db:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"            bson:"updated_at"            db:"updated_at"`
}

// Draft carries the application input for one outgoing transfer before the
// session towards the beneficiary VASP exists.
type Draft struct {
	Originator   message.Originator
	Beneficiary  message.Beneficiary
	Asset        message.VirtualAsset
	TransferType message.TransferType
	Amount       string
}

// NewOutgoing validates the draft and creates the outgoing transaction
// record. The originator has to classify as exactly one of a natural person,
// a juridical person or a bank.
func NewOutgoing(d Draft) (Transaction, error) {
	if err := classify(d.Originator); err != nil {
		return Transaction{}, err
	}
	if _, err := message.ParseVAAN(d.Originator.VAAN); err != nil {
		return Transaction{}, fmt.Errorf("originator vaan: %w", err)
	}
	if _, err := message.ParseVAAN(d.Beneficiary.VAAN); err != nil {
		return Transaction{}, fmt.Errorf("beneficiary vaan: %w", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return Transaction{}, errors.Join(ErrAmountNotPositive, err)
	}
	if !amount.IsPositive() {
		return Transaction{}, ErrAmountNotPositive
	}

	now := time.Now()
	return Transaction{
		ID:              uuid.NewString(),
		Type:            TypeOutgoing,
		Status:          StatusCreated,
		Asset:           d.Asset,
		Amount:          amount,
		OriginatorName:  d.Originator.Name,
		OriginatorVaan:  d.Originator.VAAN,
		BeneficiaryName: d.Beneficiary.Name,
		BeneficiaryVaan: d.Beneficiary.VAAN,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func classify(o message.Originator) error {
	matches := 0
	if o.PlaceOfBirth != nil || len(o.NaturalPersonIDs) != 0 {
		matches++
	}
	if len(o.JuridicalPersonIDs) != 0 {
		matches++
	}
	if o.BIC != "" {
		matches++
	}
	switch matches {
	case 1:
		return nil
	case 0:
		return ErrOriginatorUnclassifed
	default:
		return ErrOriginatorAmbiguous
	}
}
