package entities

// FailureKind classifies why a vendor attempt did not produce text.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransport FailureKind = "transport"
	FailureTimeout   FailureKind = "timeout"
	FailureCanceled  FailureKind = "canceled"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
	FailureEmpty     FailureKind = "empty"
)

// VendorResult is the outcome of a single vendor call: either Text or a Failure.
type VendorResult struct {
	Text       string
	Failure    FailureKind
	StatusCode int    // upstream status, 0 when no response was received
	Detail     string // diagnostic only, never shown to users
}

// Succeeded builds a successful result.
func Succeeded(text string) VendorResult {
	return VendorResult{Text: text}
}

// Failed builds a failed result.
func Failed(kind FailureKind, status int, detail string) VendorResult {
	return VendorResult{Failure: kind, StatusCode: status, Detail: detail}
}

// OK reports whether the call produced text.
func (r VendorResult) OK() bool {
	return r.Failure == FailureNone
}

// VendorAttempt records one call made by the completion chain.
type VendorAttempt struct {
	Vendor Service
	Result VendorResult
}
