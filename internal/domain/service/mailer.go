package service

import "context"

// Mailer defines the interface for outbound notification email. Delivery is
// best-effort from the caller's perspective: the account service decides per
// call site whether a failure surfaces or is only logged.
type Mailer interface {
	// SendVerification delivers the email-verification link to the address.
	SendVerification(ctx context.Context, to string, link string) error

	// SendOTP delivers a plaintext one-time passcode to the address.
	SendOTP(ctx context.Context, to string, code string) error
}
