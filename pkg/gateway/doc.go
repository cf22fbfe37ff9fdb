// Package gateway dispatches one request through the composed client pipeline
// and turns the outcome into either an envelope or a canonical *apierror.Error.
//
// Send returns the envelope alone. Fetch streams a successful body through a
// Decoder, records pagination when the decoded value implements Pager, and
// maps it to the outward domain type:
//
//	req, err := gw.NewRequest(ctx, http.MethodGet, "contacts?page=0&limit=50", nil)
//	if err != nil {
//	    return nil, err
//	}
//	res, err := gateway.Fetch(ctx, gw, req, gateway.JSON[pageDTO](gw.Codec()), toDomain)
//
// Every fault leaving the package is an *apierror.Error. Non-2xx responses are
// classified by status and body; transport, timeout, cancellation and decoding
// faults go through apierror.FromTransport.
package gateway
