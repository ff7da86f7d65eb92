package message

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrOriginatorNameMissing    = errors.New("originator name is required")
	ErrOriginatorVaanMissing    = errors.New("originator vaan is required")
	ErrOriginatorAddressMissing = errors.New("originator postal address is required")
)

// Envelope is embedded in every protocol message under the "msg" key.
// MessageCode is a decimal-digit string, its meaning is scoped to the message type.
type Envelope struct {
	MessageID   string `json:"msgid"`
	SessionID   string `json:"session"`
	MessageCode string `json:"code"`
}

// PostalAddress is the postal address entity shared by originator and VASP information.
type PostalAddress struct {
	Street      string `json:"street"`
	Building    string `json:"number"`
	AddressLine string `json:"adrline"`
	PostCode    string `json:"postcode"`
	Town        string `json:"town"`
	Country     string `json:"country"`
}

// PlaceOfBirth identifies a natural person birth record.
type PlaceOfBirth struct {
	DateOfBirth    time.Time `json:"birthdate"`
	CityOfBirth    string    `json:"birthcity"`
	CountryOfBirth string    `json:"birthcountry"`
}

// NaturalPersonID is a government issued identification of a natural person.
type NaturalPersonID struct {
	Identifier     string `json:"natid"`
	IDType         string `json:"natid_type"`
	IssuingCountry string `json:"natid_country"`
	NonStateIssuer string `json:"natid_issuer"`
}

// JuridicalPersonID is a registration identification of a juridical person.
type JuridicalPersonID struct {
	Identifier     string `json:"jurid"`
	IDType         string `json:"jurid_type"`
	IssuingCountry string `json:"jurid_country"`
	NonStateIssuer string `json:"jurid_issuer"`
}

// Originator is the identity record of the transfer sending party.
type Originator struct {
	Name               string              `json:"name"`
	VAAN               string              `json:"vaan"`
	PostalAddress      PostalAddress       `json:"address"`
	PlaceOfBirth       *PlaceOfBirth       `json:"birth,omitempty"`
	NaturalPersonIDs   []NaturalPersonID   `json:"nat,omitempty"`
	JuridicalPersonIDs []JuridicalPersonID `json:"jur,omitempty"`
	BIC                string              `json:"bic,omitempty"`
}

// NewOriginator creates the originator entity validating required fields.
// Place of birth and person id lists are optional and default to absent.
func NewOriginator(name, vaan string, address PostalAddress) (Originator, error) {
	if name == "" {
		return Originator{}, ErrOriginatorNameMissing
	}
	vaan = strings.ReplaceAll(vaan, " ", "")
	if vaan == "" {
		return Originator{}, ErrOriginatorVaanMissing
	}
	if address == (PostalAddress{}) {
		return Originator{}, ErrOriginatorAddressMissing
	}
	return Originator{Name: name, VAAN: vaan, PostalAddress: address}, nil
}

// Beneficiary is the identity record of the transfer receiving party.
type Beneficiary struct {
	Name string `json:"name"`
	VAAN string `json:"vaan"`
}

// VaspInformation describes a VASP node, embedded in every outbound message.
type VaspInformation struct {
	Name               string              `json:"name"`
	ID                 string              `json:"id"`
	PK                 string              `json:"pk"`
	PostalAddress      PostalAddress       `json:"address"`
	PlaceOfBirth       *PlaceOfBirth       `json:"birth,omitempty"`
	NaturalPersonIDs   []NaturalPersonID   `json:"nat,omitempty"`
	JuridicalPersonIDs []JuridicalPersonID `json:"jur,omitempty"`
	BIC                string              `json:"bic,omitempty"`
}

// VaspCode returns the trailing eight characters of the VASP identity.
func (v VaspInformation) VaspCode() string {
	if len(v.ID) < vaspCodeLength {
		return v.ID
	}
	return v.ID[len(v.ID)-vaspCodeLength:]
}

// TransferType enumerates transfer execution methods.
type TransferType int

const (
	TransferTypeBlockchain TransferType = 1
)

// VirtualAsset enumerates supported virtual asset types.
type VirtualAsset int

const (
	AssetBTC VirtualAsset = 1
	AssetETH VirtualAsset = 2
)

// String returns the asset ticker.
func (a VirtualAsset) String() string {
	switch a {
	case AssetBTC:
		return "BTC"
	case AssetETH:
		return "ETH"
	}
	return "UNKNOWN"
}

// ParseVirtualAsset maps a ticker to the wire asset id.
func ParseVirtualAsset(s string) (VirtualAsset, error) {
	switch s {
	case "BTC":
		return AssetBTC, nil
	case "ETH":
		return AssetETH, nil
	}
	return 0, errors.New("unsupported virtual asset: " + s)
}

// TransferDetails is the transfer payload of the TransferRequest message.
// Amount is a decimal string, never a binary float.
type TransferDetails struct {
	VirtualAsset VirtualAsset `json:"va"`
	TransferType TransferType `json:"ttype"`
	Amount       string       `json:"amount"`
}

// TransferReplyDetails extends the transfer payload with the beneficiary
// destination address, carried by TransferReply and later messages.
type TransferReplyDetails struct {
	DestinationAddress string       `json:"destination"`
	VirtualAsset       VirtualAsset `json:"va"`
	TransferType       TransferType `json:"ttype"`
	Amount             string       `json:"amount"`
}

// BlockchainTransaction carries the executed blockchain transfer data
// inside TransferDispatch and TransferConfirmation messages.
type BlockchainTransaction struct {
	ID             string    `json:"txid"`
	DateTime       time.Time `json:"datetime"`
	SendingAddress string    `json:"sendingadr"`
}

// HandshakeRequest carries the shared topic and the ephemeral key of the
// session initiator. Key agreement itself is outside of this package.
type HandshakeRequest struct {
	TopicA string `json:"topica"`
	ECDHPK string `json:"ecdhpk"`
}

// HandshakeResponse carries the reply topic of the session acceptor.
type HandshakeResponse struct {
	TopicB string `json:"topicb"`
}
