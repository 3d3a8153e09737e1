package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationBody_ContainsLink(t *testing.T) {
	link := "http://localhost:5005/verify?token=abc.def.ghi"

	body := verificationBody(link)

	assert.Contains(t, body, link)
	assert.Contains(t, body, "Verify Your Email")
}

func TestOTPBody_ContainsCode(t *testing.T) {
	body := otpBody("483920")

	assert.Contains(t, body, "<b>483920</b>")
	assert.Contains(t, body, "do not share")
}
