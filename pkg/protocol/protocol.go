package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// signature is the 4-byte prefix of every Zabbix protocol packet.
const signature = "ZBXD"

// HeaderSize is the fixed size of the packet header:
// 4 signature bytes, 1 flags byte, two little-endian uint32 lengths.
const HeaderSize = 13

// MaxPacketSize caps the declared payload length of an incoming packet.
// Matches the server-side limit of 128 MiB.
const MaxPacketSize = 134217728

// Protocol flag bits.
const (
	// FlagProtocol marks a Zabbix communications protocol packet.
	// It is set on every packet.
	FlagProtocol = 0x01

	// FlagCompressed marks a zlib-compressed payload. The header data
	// length is the compressed size and the reserved field carries the
	// uncompressed size.
	FlagCompressed = 0x02

	// FlagLargePacket marks the large packet mode with 8-byte lengths.
	// Not supported.
	FlagLargePacket = 0x04
)

// Errors returned while reading packets. Wrap context is added with %w,
// so check with errors.Is.
var (
	// ErrBadHeader is returned when the packet does not start with a
	// complete "ZBXD" header.
	ErrBadHeader = errors.New("protocol: unexpected response header")

	// ErrBadFlags is returned when the protocol flag bit is missing.
	ErrBadFlags = errors.New("protocol: unexpected protocol flags")

	// ErrLargePacket is returned when the peer uses large packet mode.
	ErrLargePacket = errors.New("protocol: large packets are not supported")

	// ErrPacketTooLarge is returned when a declared length exceeds
	// MaxPacketSize.
	ErrPacketTooLarge = errors.New("protocol: packet exceeds size limit")
)

// Pack wraps payload in a Zabbix protocol packet. When compress is true
// the payload is deflated and the compression flag is set.
func Pack(payload []byte, compress bool) ([]byte, error) {
	flags := byte(FlagProtocol)
	data := payload
	reserved := uint32(0)

	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("protocol: compress payload: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("protocol: compress payload: %w", err)
		}
		flags |= FlagCompressed
		reserved = uint32(len(payload))
		data = buf.Bytes()
	}

	packet := make([]byte, 0, HeaderSize+len(data))
	packet = append(packet, signature...)
	packet = append(packet, flags)
	packet = binary.LittleEndian.AppendUint32(packet, uint32(len(data)))
	packet = binary.LittleEndian.AppendUint32(packet, reserved)
	return append(packet, data...), nil
}

// Read reads exactly one packet from r and returns its payload,
// inflating it when the compression flag is set.
func Read(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if !bytes.HasPrefix(header, []byte(signature)) {
		return nil, ErrBadHeader
	}

	flags := header[4]
	if flags&FlagProtocol == 0 {
		return nil, ErrBadFlags
	}
	if flags&FlagLargePacket != 0 {
		return nil, ErrLargePacket
	}

	dataLen := binary.LittleEndian.Uint32(header[5:9])
	reserved := binary.LittleEndian.Uint32(header[9:13])
	if dataLen > MaxPacketSize || reserved > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes declared", ErrPacketTooLarge, max(dataLen, reserved))
	}

	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("protocol: read body: %w", err)
	}

	if flags&FlagCompressed == 0 {
		return data, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("protocol: decompress body: %w", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	out.Grow(int(reserved))
	if _, err := io.Copy(&out, io.LimitReader(zr, MaxPacketSize+1)); err != nil {
		return nil, fmt.Errorf("protocol: decompress body: %w", err)
	}
	if out.Len() > MaxPacketSize {
		return nil, fmt.Errorf("%w: inflated body", ErrPacketTooLarge)
	}
	return out.Bytes(), nil
}
