package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/dmitrymomot/restkit/pkg/apierror"
)

// Codec encodes request bodies and decodes response bodies.
type Codec interface {
	ContentType() string
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}

// JSONCodec is the default Codec. Each gateway holds its own value.
type JSONCodec struct {
	DisallowUnknownFields bool
	UseNumber             bool
}

func (JSONCodec) ContentType() string { return "application/json" }

func (c JSONCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (c JSONCodec) Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if c.UseNumber {
		dec.UseNumber()
	}
	return dec.Decode(v)
}

// Decoder turns a response body into an intermediate value. A nil value with
// a nil error means the body was empty.
type Decoder[I any] func(ctx context.Context, r io.Reader) (*I, error)

// JSON returns a Decoder backed by codec. An empty body or a JSON null
// decodes to nil.
func JSON[I any](codec Codec) Decoder[I] {
	if codec == nil {
		codec = JSONCodec{}
	}
	return func(ctx context.Context, r io.Reader) (*I, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out *I
		if err := codec.Decode(r, &out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, apierror.Decode(err)
		}
		return out, nil
	}
}
