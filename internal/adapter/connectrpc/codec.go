package connectrpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec marshals plain Go structs for the Connect protocol. It replaces the
// protobuf-only "json" codec that Connect registers by default.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// HandlerOptions returns the options every handler in this package is mounted with.
func HandlerOptions(interceptors ...connect.Interceptor) []connect.HandlerOption {
	opts := []connect.HandlerOption{connect.WithCodec(JSONCodec{})}
	if len(interceptors) > 0 {
		opts = append(opts, connect.WithInterceptors(interceptors...))
	}
	return opts
}
