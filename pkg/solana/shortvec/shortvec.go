// Package shortvec implements the compact-u16 length prefix used throughout
// the Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedLen is the maximum number of bytes a compact-u16 occupies.
const MaxEncodedLen = 3

var (
	ErrLengthOverflow = errors.New("shortvec: length exceeds u16")
	ErrNonCanonical   = errors.New("shortvec: non-canonical encoding")
)

// EncodeLen encodes the specified len into the writer.
//
// If len > math.MaxUint16, ErrLengthOverflow is returned.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, errors.Wrapf(ErrLengthOverflow, "len %d", len)
	}

	var buf [MaxEncodedLen]byte
	for {
		b := byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			buf[n] = b
			n++
			break
		}

		buf[n] = b | 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen decodes a shortvec encoded len from the reader.
//
// Encodings longer than necessary, or whose value does not fit in a u16, are
// rejected the same way the ledger rejects them.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < MaxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "shortvec: failed to read byte")
		}

		// A zero continuation byte means the previous byte should have ended
		// the encoding.
		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		val |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrLengthOverflow
			}
			return val, nil
		}

		if i == MaxEncodedLen-1 {
			break
		}
	}

	return 0, ErrLengthOverflow
}
