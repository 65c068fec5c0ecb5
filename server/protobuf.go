package server

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// encodeResultsProtobuf renders a queryResponse without codegen, using
// protowire directly: field 1 repeated string Rlist, field 2 repeated
// fixed64 Dist, field 3 repeated varint Qpos, field 4 repeated varint
// Spos. Offered as an alternative to JSON when the client sends
// Accept: application/x-protobuf.
func encodeResultsProtobuf(resp queryResponse) []byte {
	var b []byte
	for _, s := range resp.Rlist {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	for _, d := range resp.Dist {
		b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(d))
	}
	for _, q := range resp.Qpos {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(q))
	}
	for _, sp := range resp.Spos {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(sp))
	}
	return b
}
