package steam

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// totpAlphabet is Steam's guard code character set
const totpAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// totpCodeLength is the number of characters in a guard code
const totpCodeLength = 5

// totpInterval is the code rotation period
const totpInterval = 30 * time.Second

// TwoFactorCode generates the 5-character Steam guard code for the given
// shared secret (base64, from the credential bundle) at time now.
func TwoFactorCode(sharedSecret string, now time.Time) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("invalid shared secret: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(now.Unix())/uint64(totpInterval.Seconds()))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	digest := mac.Sum(nil)

	// Dynamic truncation per RFC 4226, then map into Steam's alphabet
	start := digest[19] & 0x0f
	code := binary.BigEndian.Uint32(digest[start:start+4]) & 0x7fffffff

	buf := make([]byte, totpCodeLength)
	for i := range buf {
		buf[i] = totpAlphabet[code%uint32(len(totpAlphabet))]
		code /= uint32(len(totpAlphabet))
	}

	return string(buf), nil
}
