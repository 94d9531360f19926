package transport_session

import (
	"context"

	"github.com/AnishMulay/crudfs/internal/wire_codec"
)

// Session is one logical connection to the object store. The protocol
// is strictly request-then-response with no request ids, so a session
// carries at most one exchange at a time; callers that share a session
// across goroutines must serialize access themselves.
type Session interface {
	// Exchange performs one full round trip: send the request word,
	// send the outbound payload if the request op is CREATE or UPDATE,
	// receive the response word, and receive an inbound payload if the
	// response op is READ. A CLOSE response tears the connection down
	// whether or not the result bit is set.
	Exchange(ctx context.Context, request wire_codec.Message, payload []byte) (wire_codec.Message, []byte, error)

	// Connected reports whether the session currently holds a live
	// connection. The connection is established lazily on the first
	// exchange.
	Connected() bool
}
