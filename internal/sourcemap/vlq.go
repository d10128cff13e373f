package sourcemap

import (
	"errors"
	"strings"
)

// Base64 VLQ: each digit carries 5 value bits; bit 5 (0x20) marks a
// continuation digit. The least significant bit of the decoded quantity is
// the sign (1 = negative).
const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift // 32
	vlqBaseMask        = vlqBase - 1       // 0x1f
	vlqContinuationBit = vlqBase           // 0x20

	// 32 bits of magnitude plus the sign bit; more continuation digits than
	// this means the stream is corrupt, not just a large value.
	vlqMaxShift = 35
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Value [128]int8

func init() {
	for i := range base64Value {
		base64Value[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Value[base64Alphabet[i]] = int8(i)
	}
}

var (
	errVLQUnterminated = errors.New("unterminated VLQ sequence")
	errVLQBadDigit     = errors.New("invalid base64 VLQ digit")
	errVLQOverflow     = errors.New("VLQ value out of range")
)

// decodeVLQ reads one signed quantity from s starting at pos and returns the
// value together with the offset of the next unread byte.
func decodeVLQ(s string, pos int) (value, next int, err error) {
	shift := uint(0)
	result := 0
	for {
		if pos >= len(s) {
			return 0, pos, errVLQUnterminated
		}
		c := s[pos]
		if c >= 128 || base64Value[c] < 0 {
			return 0, pos, errVLQBadDigit
		}
		digit := int(base64Value[c])
		pos++
		result |= (digit & vlqBaseMask) << shift
		if digit&vlqContinuationBit == 0 {
			break
		}
		shift += vlqBaseShift
		if shift > vlqMaxShift {
			return 0, pos, errVLQOverflow
		}
	}
	// Low bit is the sign.
	if result&1 != 0 {
		return -(result >> 1), pos, nil
	}
	return result >> 1, pos, nil
}

// encodeVLQ appends the signed quantity n to sb.
func encodeVLQ(sb *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & vlqBaseMask
		v >>= vlqBaseShift
		if v > 0 {
			digit |= vlqContinuationBit
		}
		sb.WriteByte(base64Alphabet[digit])
		if v == 0 {
			return
		}
	}
}
