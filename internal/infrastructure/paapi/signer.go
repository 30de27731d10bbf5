package paapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
)

// Signing constants for the GetItems operation
const (
	signingAlgorithm = "AWS4-HMAC-SHA256"
	signingService   = "ProductAdvertisingAPI"
	signingMethod    = "POST"
	canonicalURI     = "/paapi5/getitems"
	contentType      = "application/json; charset=utf-8"
	contentEncoding  = "amz-1.0"
	amzTarget        = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.GetItems"
	signedHeaders    = "content-encoding;content-type;host;x-amz-date;x-amz-target"
)

// SigningInput is everything needed to sign one GetItems request
type SigningInput struct {
	Region    string
	Host      string
	Body      string
	AccessKey string
	SecretKey string
}

func (in SigningInput) validate() error {
	if strings.TrimSpace(in.SecretKey) == "" {
		return fmt.Errorf("%w: secret key is required", domain.ErrInvalidSigningInput)
	}

	// These values end up inside the credential scope or a canonical header line.
	scoped := []struct {
		name  string
		value string
	}{
		{"region", in.Region},
		{"host", in.Host},
		{"access key", in.AccessKey},
	}
	for _, f := range scoped {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidSigningInput, f.name)
		}
		if strings.ContainsAny(f.value, "\n\r/ ") {
			return fmt.Errorf("%w: %s contains reserved characters", domain.ErrInvalidSigningInput, f.name)
		}
	}
	return nil
}

// SignRequest returns the HTTP headers for a Signature Version 4 signed
// GetItems request issued at the given instant. It is a pure function of its
// inputs: the same input and instant always produce the same Authorization.
func SignRequest(in SigningInput, at time.Time) (map[string]string, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	at = at.UTC()
	amzDate := at.Format("20060102T150405Z")
	dateStamp := at.Format("20060102")

	canonicalHeaders := "content-encoding:" + contentEncoding + "\n" +
		"content-type:" + contentType + "\n" +
		"host:" + in.Host + "\n" +
		"x-amz-date:" + amzDate + "\n" +
		"x-amz-target:" + amzTarget + "\n"

	canonicalRequest := strings.Join([]string{
		signingMethod,
		canonicalURI,
		"",
		canonicalHeaders,
		signedHeaders,
		hashHex(in.Body),
	}, "\n")

	credentialScope := dateStamp + "/" + in.Region + "/" + signingService + "/aws4_request"
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		credentialScope,
		hashHex(canonicalRequest),
	}, "\n")

	kDate := hmacSHA256([]byte("AWS4"+in.SecretKey), dateStamp)
	kRegion := hmacSHA256(kDate, in.Region)
	kService := hmacSHA256(kRegion, signingService)
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	return map[string]string{
		"Content-Encoding": contentEncoding,
		"Content-Type":     contentType,
		"Host":             in.Host,
		"X-Amz-Date":       amzDate,
		"X-Amz-Target":     amzTarget,
		"Authorization": signingAlgorithm + " Credential=" + in.AccessKey + "/" + credentialScope +
			", SignedHeaders=" + signedHeaders + ", Signature=" + signature,
	}, nil
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
