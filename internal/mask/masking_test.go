package mask

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signedValueFixture(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return value + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestIsSensitiveKeyExactMatchesDomainFields(t *testing.T) {
	for _, key := range []string{"Cookie", "X-Api-Key", "session", "Authorization", "SigningSecret"} {
		if !IsSensitiveKey(key) {
			t.Errorf("expected %q to be sensitive", key)
		}
	}
}

func TestIsSensitiveKeyDoesNotMatchUnrelatedFieldContainingFragment(t *testing.T) {
	if IsSensitiveKey("cookieConsent") {
		t.Error("cookieConsent should not be treated as sensitive")
	}
}

func TestIsSensitiveKeySubstringMatchesCredentialWords(t *testing.T) {
	if !IsSensitiveKey("access_token") {
		t.Error("expected access_token to match the token substring")
	}
}

func TestLooksLikeSignedValueDetectsSignedCookieShape(t *testing.T) {
	signed := signedValueFixture("user-42", "test-secret")
	if !looksLikeSignedValue(signed) {
		t.Error("expected signed cookie shape to be detected")
	}
}

func TestLooksLikeSignedValueIgnoresPlainStrings(t *testing.T) {
	if looksLikeSignedValue("hello.world") {
		t.Error("short suffix should not be mistaken for a signature")
	}
	if looksLikeSignedValue("no-dot-here") {
		t.Error("a value with no dot can't be a signed value")
	}
}

func TestMaskSensitiveRedactsSignedCookieValues(t *testing.T) {
	signed := signedValueFixture("user-42", "test-secret")
	out := MaskSensitive(signed)
	if out != "******** [REDACTED]" {
		t.Errorf("expected signed value to be redacted, got %v", out)
	}
}
