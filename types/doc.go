// Package types defines the values exchanged across the runtime boundary:
// headers, blocks, extrinsics, digests, inherent data, version data and the
// encoded results of the BlockBuilder API.
//
// Every type implements scale.Encodable and scale.Decodable through pointer
// receivers, so values are encoded with scale.Marshal(&v).
package types
