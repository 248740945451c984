package netraw

// SocketOption bundles the raw-socket knobs SetOption can adjust in a
// single idempotent call. A nil field is left untouched, so callers can
// set just TTL, just the buffer sizes, or any combination, without
// clobbering options they didn't mention.
type SocketOption struct {
	Ttl       *int
	Tos       *int
	Broadcast *bool
	RecvBuf   *int
	SendBuf   *int
}
