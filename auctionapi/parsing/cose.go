package parsing

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// coseSign1Tag is the CBOR tag for a COSE_Sign1 message (RFC 9052).
const coseSign1Tag = 18

// ExtractCOSEPayload extracts the payload from a COSE_Sign1 4-element array,
// tagged or untagged.
// COSE_Sign1 structure: [protected, unprotected, payload, signature]
// Returns the payload bytes (element 2)
func ExtractCOSEPayload(coseBytes []byte) ([]byte, error) {
	content := coseBytes

	var tagged cbor.RawTag
	if err := cbor.Unmarshal(coseBytes, &tagged); err == nil {
		if tagged.Number != coseSign1Tag {
			return nil, fmt.Errorf("unexpected CBOR tag %d, want %d", tagged.Number, coseSign1Tag)
		}
		content = tagged.Content
	}

	var coseArray []any
	err := cbor.Unmarshal(content, &coseArray)
	if err != nil {
		return nil, fmt.Errorf("parse COSE array: %w", err)
	}

	if len(coseArray) != 4 {
		return nil, fmt.Errorf("invalid COSE_Sign1 structure: expected 4 elements, got %d", len(coseArray))
	}

	payload, ok := coseArray[2].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid payload in COSE structure")
	}

	return payload, nil
}
