package protocol

// Key is a validated memcache key.
//
// The zero value is not a valid key; obtain keys through ParseKey.
type Key string

// ParseKey validates raw text as a memcache key.
// Keys must be 1-250 bytes and contain no whitespace or control characters:
// those bytes are protocol delimiters and would corrupt request framing.
func ParseKey(s string) (Key, error) {
	if len(s) == 0 {
		return "", &InvalidKeyError{Message: "key is empty"}
	}

	if len(s) > MaxKeyLength {
		return "", &InvalidKeyError{Message: "key exceeds maximum length of 250 bytes"}
	}

	for _, b := range []byte(s) {
		if b <= 32 || b == 127 {
			return "", &InvalidKeyError{Message: "key contains whitespace or control characters"}
		}
	}

	return Key(s), nil
}

// IsValidKey reports whether ParseKey would accept key.
func IsValidKey(key string) bool {
	_, err := ParseKey(key)
	return err == nil
}

func (k Key) String() string {
	return string(k)
}
