package blob

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclearops/lera/pkg/config"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	return NewSigner(&config.StorageConfig{
		AccountKey:    base64.StdEncoding.EncodeToString([]byte("unit-test-account-key")),
		AccountDomain: "blob.core.usgovcloudapi.net",
		SASExpiryDays: 0.5,
	})
}

func TestSignedURL(t *testing.T) {
	signer := newTestSigner(t)

	signed, err := signer.SignedURL("nrcdocs", "nureg", "nureg-1022 r3.pdf", 31)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signed,
		"https://nrcdocs.blob.core.usgovcloudapi.net/nureg/nureg-1022%20r3.pdf?"),
		"unexpected prefix: %s", signed)
	assert.True(t, strings.HasSuffix(signed, "#page=31"))

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, "r", query.Get("sp"), "read-only permission")
	assert.NotEmpty(t, query.Get("sig"))
	assert.NotEmpty(t, query.Get("se"), "expiry present")
	assert.Equal(t, "https", query.Get("spr"))
}

func TestSignedURLUnescapesEncodedBlobNames(t *testing.T) {
	signer := newTestSigner(t)

	fromRaw, err := signer.SignedURL("acct", "manual", "section 3.pdf", 1)
	require.NoError(t, err)
	fromEncoded, err := signer.SignedURL("acct", "manual", "section%203.pdf", 1)
	require.NoError(t, err)

	rawPath, _, _ := strings.Cut(fromRaw, "?")
	encodedPath, _, _ := strings.Cut(fromEncoded, "?")
	assert.Equal(t, rawPath, encodedPath, "raw and pre-encoded names resolve to the same blob")
}

func TestSignedURLInvalidAccountKey(t *testing.T) {
	signer := NewSigner(&config.StorageConfig{
		AccountKey:    "not base64!!!",
		AccountDomain: "blob.core.usgovcloudapi.net",
		SASExpiryDays: 1,
	})

	_, err := signer.SignedURL("acct", "c", "b.pdf", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage credential")
}
