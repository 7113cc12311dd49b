package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Read deserializes a container. It fails with a decode error when the
// signature mismatches, when the stored written-version falls outside what
// this reader declares it can read, or when any length-prefixed field is
// truncated.
func Read(r io.Reader) (*Container, error) {
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("failed to read signature: %w", err)
	}
	if string(sig) != Signature {
		return nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidSignature, string(sig), Signature)
	}

	c := &Container{}
	for _, dst := range []*uint32{&c.VersionWritten, &c.VersionReadableCur, &c.VersionReadableFloor} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("failed to read version: %w", eofToUnexpected(err))
		}
	}

	if c.VersionWritten < VerReadableFloor {
		return nil, fmt.Errorf("%w: container version 0x%08x is below readable floor 0x%08x",
			ErrUnsupportedVersion, c.VersionWritten, VerReadableFloor)
	}
	if c.VersionWritten > VerReadableCur {
		return nil, fmt.Errorf("%w: container version 0x%08x is above readable version 0x%08x",
			ErrUnsupportedVersion, c.VersionWritten, VerReadableCur)
	}

	var err error
	if c.ModelBytes, err = readBlob(r); err != nil {
		return nil, fmt.Errorf("failed to read model bytes: %w", err)
	}

	inCol, err := readBlob(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input column name: %w", err)
	}
	outCol, err := readBlob(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read output column name: %w", err)
	}
	c.InputColumn = string(inCol)
	c.OutputColumn = string(outCol)
	if c.InputColumn == "" || c.OutputColumn == "" {
		return nil, ErrBlankColumnName
	}

	return c, nil
}

// Decode deserializes a container from bytes.
func Decode(data []byte) (*Container, error) {
	return Read(bytes.NewReader(data))
}

func readBlob(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, eofToUnexpected(err)
	}
	if length > maxFieldLen {
		return nil, ErrFieldTooLarge
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, eofToUnexpected(err)
	}
	return data, nil
}

// eofToUnexpected normalizes a clean EOF in the middle of a field to
// io.ErrUnexpectedEOF so truncation is always reported the same way.
func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
