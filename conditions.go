package custodia

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/custodia/crypto/bech32"
	"github.com/iov-one/custodia/errors"
)

var (
	// AddressLength is the length of all addresses
	// You can modify it in init, but beware that you need to
	// get the same value in all nodes of your network
	AddressLength = 20

	// it must have (?s) flags, otherwise it errors when last section contains 0x20 (newline)
	perm = regexp.MustCompile(`(?s)^([a-z0-9_\-]{3,10})/([a-z0-9_\-]{3,10})/(.+)$`)
)

// Condition is a specially formatted array, containing
// information on who can authorize an action.
// It is of the format:
//
//	sprintf("%s/%s/%s", extension, type, data)
type Condition []byte

// NewCondition creates a condition from an extension name, a condition type
// and arbitrary binary data.
func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse will extract the sections from the Condition bytes
// and verify it is properly formatted
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := perm.FindSubmatch(c)
	if chunks == nil {
		return "", "", nil, errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Address will convert a Condition into an Address
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals checks if two conditions are the same
func (c Condition) Equals(c2 Condition) bool {
	return bytes.Equal(c, c2)
}

// String returns a human readable string.
// We keep the extension and type in ascii and
// hex-encode the binary data
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate returns an error if the Condition is not the proper format
func (c Condition) Validate() error {
	if len(c) == 0 {
		return errors.Wrap(errors.ErrEmpty, "condition")
	}
	if !perm.Match(c) {
		return errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return nil
}

// MarshalJSON provides a hex representation for JSON encoding.
func (c Condition) MarshalJSON() ([]byte, error) {
	return marshalHex(c)
}

// UnmarshalJSON parses a serialized representation of a condition.
func (c *Condition) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	val, err := parseConditionString(enc)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// parseConditionString accepts either a hex serialized data or a
// human readable <extension>/<type>/<hex-data> format.
func parseConditionString(enc string) (Condition, error) {
	args := strings.Split(enc, "/")
	switch len(args) {
	case 1:
		val, err := hex.DecodeString(enc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "hex decode")
		}
		c := Condition(val)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	case 3:
		data, err := hex.DecodeString(args[2])
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "hex decode data")
		}
		c := NewCondition(args[0], args[1], data)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.Wrap(errors.ErrInput, "invalid condition format")
	}
}

// Address represents the byte representation of one identity on the ledger.
// It is the hash of a Condition and the canonical key for ownership and
// authorization checks.
type Address []byte

// Equals checks if two addresses are the same
func (a Address) Equals(addr Address) bool {
	return bytes.Equal(a, addr)
}

// MarshalJSON provides a hex representation for JSON encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	return marshalHex(a)
}

// UnmarshalJSON parses an Address in the format used by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if enc == "" {
		*a = nil
		return nil
	}
	val, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = val
	return nil
}

// marshalHex marshals a byte slice as an upper case hex JSON string.
func marshalHex(bz []byte) ([]byte, error) {
	s := strings.ToUpper(hex.EncodeToString(bz))
	return json.Marshal(s)
}

// String returns a human readable string.
// Currently hex, may move to bech32
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32String returns a human readable address encoded using the bech32
// format with a given prefix.
func (a Address) Bech32String(prefix string) (string, error) {
	return bech32.Encode(prefix, a)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) == 0 {
		return errors.Wrap(errors.ErrEmpty, "address")
	}
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: invalid length %d", len(a))
	}
	return nil
}

// NewAddress hashes and truncates into the proper size
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	h := sha256.Sum256(data)
	return h[:AddressLength]
}

// ParseAddress accepts address in one of the following formats:
//
//	hex:  a hex encoded address value (default when no prefix),
//	cond: a hex encoded condition that the address is derived from,
//	seq:  a sequence reference in <extension>/<type>/<id> format where
//	      the numeric id is converted to its big endian representation,
//	bech32: a bech32 encoded address with any prefix.
func ParseAddress(enc string) (Address, error) {
	format := "hex"
	if n := strings.SplitN(enc, ":", 2); len(n) == 2 {
		format, enc = n[0], n[1]
	}

	switch format {
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "hex decode")
		}
		a := Address(val)
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return a, nil
	case "cond":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "hex decode")
		}
		c := Condition(val)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Address(), nil
	case "seq":
		args := strings.Split(enc, "/")
		if len(args) != 3 {
			return nil, errors.Wrap(errors.ErrInput, "invalid seq format")
		}
		id, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "invalid seq id")
		}
		if id == 0 {
			return nil, errors.Wrap(errors.ErrInput, "seq id must be greater than zero")
		}
		encID := make([]byte, 8)
		binary.BigEndian.PutUint64(encID, id)
		return NewCondition(args[0], args[1], encID).Address(), nil
	case "bech32":
		_, payload, err := bech32.Decode(enc)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "bech32 decode: %s", err)
		}
		a := Address(payload)
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown format %q", format)
	}
}
