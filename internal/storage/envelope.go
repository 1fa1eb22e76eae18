package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

// FormatVersion is the envelope layout version written by this package.
const FormatVersion uint16 = 1

const (
	magic    = "WXST"
	flagZstd = 1 << 0
)

var (
	ErrBadMagic        = errors.New("storage: not a store file")
	ErrVersionMismatch = errors.New("storage: unsupported format version")
	ErrKindMismatch    = errors.New("storage: stored kind does not match")
	ErrChecksum        = errors.New("storage: checksum mismatch")
	ErrTruncated       = errors.New("storage: truncated file")
	ErrUnknownCodec    = errors.New("storage: unknown codec")
	ErrEmptyPayload    = errors.New("storage: payload holds no value")
)

// envelope is the decoded frame around a payload.
type envelope struct {
	version uint16
	flags   uint8
	codec   CodecID
	kind    string
	payload []byte
}

func (e envelope) compressed() bool { return e.flags&flagZstd != 0 }

func encodeEnvelope(e envelope) ([]byte, error) {
	if len(e.kind) > math.MaxUint16 {
		return nil, fmt.Errorf("storage: kind too long (%d bytes)", len(e.kind))
	}
	if uint64(len(e.payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("storage: payload too large (%d bytes)", len(e.payload))
	}

	var buf bytes.Buffer
	buf.Grow(len(magic) + 10 + len(e.kind) + len(e.payload) + sha256.Size)

	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.BigEndian, e.version)
	buf.WriteByte(e.flags)
	buf.WriteByte(byte(e.codec))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(e.kind)))
	buf.WriteString(e.kind)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(e.payload)))
	buf.Write(e.payload)

	sum := sha256.Sum256(e.payload)
	buf.Write(sum[:])

	return buf.Bytes(), nil
}

func decodeEnvelope(data []byte) (envelope, error) {
	var e envelope
	r := bytes.NewReader(data)

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return e, ErrTruncated
	}
	if string(head) != magic {
		return e, ErrBadMagic
	}

	if err := binary.Read(r, binary.BigEndian, &e.version); err != nil {
		return e, ErrTruncated
	}
	if e.version != FormatVersion {
		return e, fmt.Errorf("%w: %d", ErrVersionMismatch, e.version)
	}

	var codec uint8
	if err := binary.Read(r, binary.BigEndian, &e.flags); err != nil {
		return e, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &codec); err != nil {
		return e, ErrTruncated
	}
	e.codec = CodecID(codec)

	var kindLen uint16
	if err := binary.Read(r, binary.BigEndian, &kindLen); err != nil {
		return e, ErrTruncated
	}
	kind := make([]byte, kindLen)
	if _, err := io.ReadFull(r, kind); err != nil {
		return e, ErrTruncated
	}
	e.kind = string(kind)

	var payloadLen uint32
	if err := binary.Read(r, binary.BigEndian, &payloadLen); err != nil {
		return e, ErrTruncated
	}
	if int64(payloadLen)+sha256.Size != int64(r.Len()) {
		return e, ErrTruncated
	}
	e.payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, e.payload); err != nil {
		return e, ErrTruncated
	}

	var sum [sha256.Size]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return e, ErrTruncated
	}
	if sha256.Sum256(e.payload) != sum {
		return e, ErrChecksum
	}

	return e, nil
}

func compress(payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(payload, nil), nil
}

func decompress(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(payload, nil)
}
