//
// Package icmpcodec encodes and decodes ICMP Echo v4/v6 frames.
//
// The wire format (network byte order) is fixed by RFC 792 and RFC 4443:
//
//	byte 0     type
//	byte 1     code (always 0 here)
//	bytes 2-3  checksum
//	bytes 4-5  identifier
//	bytes 6-7  sequence number
//	bytes 8..  payload
//
// No framing or header of pingfs's own is added; payload is user bytes
// verbatim.
//
package icmpcodec
