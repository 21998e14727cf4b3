package venue

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const (
	headerAPIKey    = "X-Api-Key"
	headerTimestamp = "X-Timestamp"
	headerSignature = "X-Signature"
)

// Signer produces the venue's request authentication headers: an HMAC-SHA256
// of timestamp, path and body keyed by the API secret.
type Signer struct {
	apiKey string
	secret []byte
}

func NewSigner(apiKey, apiSecret string) (*Signer, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if apiSecret == "" {
		return nil, errors.New("api secret is required")
	}
	return &Signer{apiKey: apiKey, secret: []byte(apiSecret)}, nil
}

func (s *Signer) Sign(h http.Header, path string, body []byte, at time.Time) {
	ts := strconv.FormatInt(at.UnixMilli(), 10)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ts))
	mac.Write([]byte(path))
	mac.Write(body)
	h.Set(headerAPIKey, s.apiKey)
	h.Set(headerTimestamp, ts)
	h.Set(headerSignature, hex.EncodeToString(mac.Sum(nil)))
}
