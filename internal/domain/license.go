package domain

// LicenseStatus is the tri-state outcome of the license gate.
type LicenseStatus string

const (
	// LicenseChecking means no verification has completed yet.
	LicenseChecking LicenseStatus = "checking"
	// Licensed means the last verification succeeded.
	Licensed LicenseStatus = "licensed"
	// Unlicensed means no key is known or the last verification failed.
	Unlicensed LicenseStatus = "unlicensed"
)

// Purchase is the metadata the licensing vendor returns for a valid key.
type Purchase struct {
	Email         string `json:"email"`
	SaleTimestamp string `json:"sale_timestamp"`
}
