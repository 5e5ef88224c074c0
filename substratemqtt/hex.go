package substratemqtt

import (
	"encoding/hex"
	"fmt"

	"github.com/clawinfra/substrate"
)

func decodeHexHash(s string) (substrate.Hash, error) {
	var h substrate.Hash
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("expected %d-byte hash, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}
