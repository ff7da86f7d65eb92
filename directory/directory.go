// Package directory resolves VASP codes to the full VASP information of
// known counterparties. Entries come from the node configuration, acting as
// the local replica of the VASP registry this deployment trusts.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openvasp/openvasp-host/message"
)

var (
	ErrVaspNotListed = errors.New("vasp code is not listed in the directory")
	ErrCodeRepeated  = errors.New("vasp code is listed twice")
	ErrCodeMalformed = errors.New("vasp code is not eight characters long")
)

const vaspCodeLength = 8

// Entry describes one trusted counterparty VASP in the configuration file.
type Entry struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	ID          string `yaml:"id"`
	PK          string `yaml:"pk"`
	Street      string `yaml:"street"`
	Building    string `yaml:"building"`
	PostCode    string `yaml:"post_code"`
	Town        string `yaml:"town"`
	Country     string `yaml:"country"`
	BIC         string `yaml:"bic"`
	AutoConfirm bool   `yaml:"auto_confirm"`
}

type Config struct {
	Vasps []Entry `yaml:"vasps"`
}

// Information converts the entry to the wire form of the VASP identity.
func (e Entry) Information() message.VaspInformation {
	return message.VaspInformation{
		Name: e.Name,
		ID:   e.ID,
		PK:   e.PK,
		PostalAddress: message.PostalAddress{
			Street:   e.Street,
			Building: e.Building,
			PostCode: e.PostCode,
			Town:     e.Town,
			Country:  e.Country,
		},
		BIC: e.BIC,
	}
}

// Directory is the in-memory view of the configured counterparties.
// Reads are lock free, the directory is immutable after creation.
type Directory struct {
	byCode map[string]message.VaspInformation
	auto   map[string]bool
}

// New validates the configured entries and builds the Directory.
func New(cfg Config) (*Directory, error) {
	byCode := make(map[string]message.VaspInformation, len(cfg.Vasps))
	auto := make(map[string]bool, len(cfg.Vasps))
	for _, e := range cfg.Vasps {
		code := strings.TrimSpace(e.Code)
		if len(code) != vaspCodeLength {
			return nil, fmt.Errorf("%w, code [ %s ]", ErrCodeMalformed, e.Code)
		}
		if _, ok := byCode[code]; ok {
			return nil, fmt.Errorf("%w, code [ %s ]", ErrCodeRepeated, code)
		}
		byCode[code] = e.Information()
		auto[code] = e.AutoConfirm
	}
	return &Directory{byCode: byCode, auto: auto}, nil
}

// Resolve returns the VASP information of the given code.
func (d *Directory) Resolve(_ context.Context, vaspCode string) (message.VaspInformation, error) {
	v, ok := d.byCode[strings.TrimSpace(vaspCode)]
	if !ok {
		return message.VaspInformation{}, fmt.Errorf("%w, code [ %s ]", ErrVaspNotListed, vaspCode)
	}
	return v, nil
}

// IsAutoConfirmed reports whether inbound sessions of the given VASP code
// are accepted without an application decision.
func (d *Directory) IsAutoConfirmed(vaspCode string) bool {
	return d.auto[strings.TrimSpace(vaspCode)]
}
