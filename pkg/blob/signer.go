// Package blob mints signed, time-limited URLs for the source documents
// referenced by search results.
package blob

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/nuclearops/lera/pkg/config"
)

// Signer builds read-only SAS URLs with a page anchor so citations open
// the document at the referenced page. Search results may carry the
// blob name raw or percent-encoded; it is unescaped before signing and
// re-encoded in the final URL.
type Signer struct {
	accountKey    string
	accountDomain string
	expiry        time.Duration
}

// NewSigner creates a signer from storage settings.
func NewSigner(cfg *config.StorageConfig) *Signer {
	return &Signer{
		accountKey:    cfg.AccountKey,
		accountDomain: cfg.AccountDomain,
		expiry:        time.Duration(cfg.SASExpiryDays * 24 * float64(time.Hour)),
	}
}

// SignedURL implements models.URLSigner.
func (s *Signer) SignedURL(account, container, blobName string, page int) (string, error) {
	rawBlobName := blobName
	if unescaped, err := url.PathUnescape(blobName); err == nil {
		rawBlobName = unescaped
	}

	credential, err := azblob.NewSharedKeyCredential(account, s.accountKey)
	if err != nil {
		return "", fmt.Errorf("building storage credential for %q: %w", account, err)
	}

	permissions := sas.BlobPermissions{Read: true}
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		ExpiryTime:    time.Now().UTC().Add(s.expiry),
		Permissions:   permissions.String(),
		ContainerName: container,
		BlobName:      rawBlobName,
	}
	params, err := values.SignWithSharedKey(credential)
	if err != nil {
		return "", fmt.Errorf("signing blob %q: %w", rawBlobName, err)
	}

	signed := url.URL{
		Scheme:   "https",
		Host:     fmt.Sprintf("%s.%s", account, s.accountDomain),
		Path:     fmt.Sprintf("/%s/%s", container, rawBlobName),
		RawQuery: params.Encode(),
		Fragment: fmt.Sprintf("page=%d", page),
	}
	return signed.String(), nil
}
