// Package requestid correlates calls through the X-Request-ID header.
//
// On the client side Transport stamps every outgoing request with the id
// carried by its context, or with a fresh UUID when there is none, so the
// remote API can echo it back and the gateway can record it in the response
// envelope. On the server side Middleware accepts a well-formed inbound id or
// generates one, stores it in the request context and echoes it in the
// response.
//
//	rt := pipeline.Chain(http.DefaultTransport, requestid.Transport())
//
//	log := logger.New(logger.WithContextExtractors(requestid.Extractor))
//
// Malformed inbound ids are replaced, never rejected.
package requestid
