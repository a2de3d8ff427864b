/*
Package codec implements the protobuf wire format helpers used by every
message, model and transaction of this module.

Types implement weave.Persistent by hand: Marshal appends fields with an
Encoder and Unmarshal visits them with Walk. Zero values are omitted when
encoding and unknown fields are skipped when decoding, so the produced bytes
are compatible with a proto3 schema declaring the same field numbers.
Varints and length prefixes go through the gogo/protobuf proto runtime.
*/
package codec
