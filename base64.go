package chunktree

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Base64 is a byte slice that renders as unpadded base64url text, the
// encoding gateway APIs use for binary fields. The zero value encodes to the
// empty string.
type Base64 []byte

// DecodeBase64 parses unpadded base64url text.
func DecodeBase64(s string) (Base64, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}
	return b, nil
}

func (b Base64) String() string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func (b Base64) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Base64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := DecodeBase64(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
