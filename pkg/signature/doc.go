// Package signature verifies inbound webhook authenticity using an HMAC-SHA256
// signature carried in the Authorization header.
//
// The expected header shape is:
//
//	Authorization: <Scheme> <HEX(HMAC-SHA256(secret, rawBody))>
//
// The scheme is compared case-insensitively with the configured one (default
// "Signature"). The signature is rendered as uppercase hexadecimal and compared in
// constant time, ignoring case.
//
// # Raw bytes
//
// The HMAC is computed over the request body exactly as received on the wire.
// Decoding and re-encoding the payload before verification changes the bytes and
// invalidates the signature, so always verify first:
//
//	v := signature.New(signature.Config{Secret: secret})
//
//	body, _ := io.ReadAll(r.Body)
//	if !v.Verify(r.Header.Get("Authorization"), body) {
//	    http.Error(w, "unauthorized", http.StatusUnauthorized)
//	    return
//	}
//
// Middleware does the buffering for you and hands the same bytes to the next
// handler:
//
//	mux.Handle("/webhooks", v.Middleware(handler))
//
// # Signing
//
// Sign produces the credential part of the header for a given body, which is what
// a sender (or a test) needs:
//
//	req.Header.Set("Authorization", "Signature "+signature.Sign(secret, body))
package signature
