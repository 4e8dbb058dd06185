// Package scale implements the SCALE binary codec used on the host/runtime
// boundary.
//
// SCALE is not self-describing: encoder and decoder agree on the type.
// Fixed-width integers are little-endian, sequences carry a compact length
// prefix, fixed arrays carry none, and structs encode their fields in order
// with no padding.
//
// Compact integers use the low two bits of the first byte as a mode:
//
//	0b00  single byte, value in the upper six bits (< 2^6)
//	0b01  two bytes little-endian (< 2^14)
//	0b10  four bytes little-endian (< 2^30)
//	0b11  big-integer mode, upper six bits hold n-4, followed by n bytes
//
// Types participate by implementing Encodable and Decodable:
//
//	func (h *Header) EncodeTo(e *scale.Encoder) {
//	    e.PutFixed(h.ParentHash[:])
//	    e.PutCompact(h.Number)
//	}
//
//	func (h *Header) DecodeFrom(d *scale.Decoder) error {
//	    if err := d.Fixed(h.ParentHash[:]); err != nil {
//	        return err
//	    }
//	    h.Number, err = d.Compact()
//	    return err
//	}
//
// Decoding policies (canonical compact forms, duplicate mapping keys) are
// configured through Options.
package scale
