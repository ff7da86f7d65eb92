package message

import (
	"errors"
	"fmt"
	"strings"
)

const (
	vaspCodeLength       = 8
	customerNumberLength = 14
	vaanLength           = vaspCodeLength + customerNumberLength
)

var ErrInvalidVaanLength = errors.New("vaan must be 22 characters, 8 char vasp code followed by 14 char customer number")

// VAAN is a virtual assets account number, an 8 character VASP code prefix
// followed by a 14 character customer specific number.
type VAAN struct {
	VaspCode       string
	CustomerNumber string
}

// ParseVAAN splits a whitespace-stripped VAAN into its VASP code prefix and
// customer number suffix.
func ParseVAAN(s string) (VAAN, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != vaanLength {
		return VAAN{}, errors.Join(ErrInvalidVaanLength, fmt.Errorf("got %d characters", len(s)))
	}
	return VAAN{VaspCode: s[:vaspCodeLength], CustomerNumber: s[vaspCodeLength:]}, nil
}

// String concatenates the VAAN back to its 22 character form.
func (v VAAN) String() string {
	return v.VaspCode + v.CustomerNumber
}
