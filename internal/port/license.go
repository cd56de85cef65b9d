package port

import "context"

// LicenseVerifier checks a license key against the commerce provider.
// A nil error means the key grants an active Pro subscription; uses is the
// provider-reported activation count.
type LicenseVerifier interface {
	Verify(ctx context.Context, licenseKey string) (uses int, err error)
}
