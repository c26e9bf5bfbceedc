package sourcemapx

import "math"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
	vlqMaxShift        = 32
)

// base64Values maps a byte to its 6-bit base64 value, or 0xff if the byte is
// not in the alphabet.
var base64Values [256]byte

func init() {
	for i := range base64Values {
		base64Values[i] = 0xff
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Values[base64Alphabet[i]] = byte(i)
	}
}

// DecodeVLQ decodes a single base64 VLQ value from s starting at offset and
// returns it along with the offset just past it.
//
// Each character carries 5 data bits, least significant group first, and a
// continuation bit. The lowest bit of the accumulated value is the sign.
//
//	DecodeVLQ("A", 0) // 0, 1
//	DecodeVLQ("C", 0) // 1, 1
//	DecodeVLQ("D", 0) // -1, 1
//	DecodeVLQ("gB", 0) // 16, 2
//
// The returned error is a *DecodeError with only Offset and Err populated;
// DecodeMappings fills in the rest.
func DecodeVLQ(s string, offset int) (value int, next int, err error) {
	if offset < 0 {
		return 0, offset, &DecodeError{Offset: offset, Err: ErrOffset}
	}
	var acc uint64
	shift := uint(0)
	i := offset
	for {
		if i >= len(s) {
			return 0, i, &DecodeError{Offset: i, Err: ErrTruncated}
		}
		digit := base64Values[s[i]]
		if digit == 0xff {
			return 0, i, &DecodeError{Offset: i, Err: ErrInvalidChar}
		}
		if shift >= vlqMaxShift {
			return 0, i, &DecodeError{Offset: i, Err: ErrOverflow}
		}
		i++
		acc |= uint64(digit&vlqBaseMask) << shift
		if digit&vlqContinuationBit == 0 {
			break
		}
		shift += vlqBaseShift
	}

	if acc>>1 > math.MaxInt32 {
		return 0, i - 1, &DecodeError{Offset: i - 1, Err: ErrOverflow}
	}
	magnitude := int(acc >> 1)
	if acc&1 == 1 {
		return -magnitude, i, nil
	}
	return magnitude, i, nil
}
