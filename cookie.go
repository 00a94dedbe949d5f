package igniter

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/igniter-hq/igniter-go/apperror"
)

// CookieOption customizes a deferred cookie effect (spec §6.4).
type CookieOption func(*cookieEffect)

// WithPath overrides the cookie's Path attribute (default "/").
func WithPath(path string) CookieOption {
	return func(c *cookieEffect) { c.path = path }
}

// WithDomain sets the cookie's Domain attribute.
func WithDomain(domain string) CookieOption {
	return func(c *cookieEffect) { c.domain = domain }
}

// WithSecure marks the cookie Secure.
func WithSecure() CookieOption {
	return func(c *cookieEffect) { c.secure = true }
}

// WithSameSite overrides the cookie's SameSite attribute ("Strict",
// "Lax", or "None" — "None" implies Secure per spec §6.4).
func WithSameSite(mode string) CookieOption {
	return func(c *cookieEffect) {
		c.sameSite = mode
		if strings.EqualFold(mode, "None") {
			c.secure = true
		}
	}
}

// Signed requests the cookie's value be HMAC-signed before being written
// to the wire, and verified (and stripped back to the raw value) when
// read back from an incoming request (spec §6.4 "Signed cookies").
func Signed() CookieOption {
	return func(c *cookieEffect) { c.signed = true }
}

// validateCookiePrefix enforces the "__Secure-"/"__Host-" naming rules
// (spec §6.4): a "__Secure-" cookie must be Secure; a "__Host-" cookie
// must additionally have Path "/" and no Domain.
func validateCookiePrefix(name string, secure bool, path, domain string) *apperror.Error {
	switch {
	case strings.HasPrefix(name, "__Host-"):
		if !secure || path != "/" || domain != "" {
			return apperror.ConfigInvalid(fmt.Sprintf("cookie %q uses the __Host- prefix but is missing Secure, Path=/, or has a Domain set", name))
		}
	case strings.HasPrefix(name, "__Secure-"):
		if !secure {
			return apperror.ConfigInvalid(fmt.Sprintf("cookie %q uses the __Secure- prefix but is not marked Secure", name))
		}
	}
	return nil
}

// signCookieValue appends an HMAC-SHA256 signature of value (base64url,
// unpadded) separated by a dot, using secret as the signing key.
func signCookieValue(value string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(value))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return value + "." + sig
}

// verifySignedCookieValue splits signed into its value and signature,
// recomputes the HMAC over value with secret, and returns (value, true)
// only if the signatures match.
func verifySignedCookieValue(signed string, secret []byte) (string, bool) {
	idx := strings.LastIndex(signed, ".")
	if idx < 0 {
		return "", false
	}
	value, sig := signed[:idx], signed[idx+1:]
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(value))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return value, true
}

// renderSetCookie formats a cookie effect as a Set-Cookie header value.
// signingSecret is used to sign the value when the effect requested it;
// a nil/empty secret leaves signed cookies unsigned, and nothing rejects
// that combination.
func renderSetCookie(c cookieEffect, signingSecret []byte) string {
	value := c.value
	if c.signed && len(signingSecret) > 0 {
		value = signCookieValue(value, signingSecret)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s", c.name, value)

	if c.clear {
		b.WriteString("; Max-Age=0")
	} else if c.maxAge != 0 {
		fmt.Fprintf(&b, "; Max-Age=%d", c.maxAge)
	}
	if c.path != "" {
		fmt.Fprintf(&b, "; Path=%s", c.path)
	}
	if c.domain != "" {
		fmt.Fprintf(&b, "; Domain=%s", c.domain)
	}
	if c.secure {
		b.WriteString("; Secure")
	}
	if c.httpOnly {
		b.WriteString("; HttpOnly")
	}
	if c.sameSite != "" {
		fmt.Fprintf(&b, "; SameSite=%s", c.sameSite)
	}
	return b.String()
}
