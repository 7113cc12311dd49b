package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Write serializes a container:
//
//	signature        : 8 bytes ASCII "ONNXSCOR"
//	versionWritten   : uint32 little-endian
//	versionReadCur   : uint32
//	versionReadFloor : uint32
//	modelBytesLen    : uint32, then modelBytes
//	inputColumnName  : uint32 length + UTF-8
//	outputColumnName : uint32 length + UTF-8
//
// Zero version fields are stamped with the writer's current constants.
func Write(w io.Writer, c *Container) error {
	if c.InputColumn == "" || c.OutputColumn == "" {
		return ErrBlankColumnName
	}

	verWritten := c.VersionWritten
	if verWritten == 0 {
		verWritten = VerWritten
	}
	verCur := c.VersionReadableCur
	if verCur == 0 {
		verCur = VerReadableCur
	}
	verFloor := c.VersionReadableFloor
	if verFloor == 0 {
		verFloor = VerReadableFloor
	}

	if _, err := io.WriteString(w, Signature); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}
	for _, v := range []uint32{verWritten, verCur, verFloor} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write version: %w", err)
		}
	}
	if err := writeBlob(w, c.ModelBytes); err != nil {
		return fmt.Errorf("failed to write model bytes: %w", err)
	}
	if err := writeBlob(w, []byte(c.InputColumn)); err != nil {
		return fmt.Errorf("failed to write input column name: %w", err)
	}
	if err := writeBlob(w, []byte(c.OutputColumn)); err != nil {
		return fmt.Errorf("failed to write output column name: %w", err)
	}
	return nil
}

// Encode serializes a container to bytes.
func Encode(c *Container) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBlob(w io.Writer, data []byte) error {
	if len(data) > maxFieldLen {
		return ErrFieldTooLarge
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil { //nolint:gosec // G115: bounded above.
		return err
	}
	_, err := w.Write(data)
	return err
}
