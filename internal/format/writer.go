package format

import (
	"encoding/binary"
	"io"

	"github.com/balsa-rf/balsa/internal/table"
)

// CreatorMetadata records the optional creator_name/creator_*_version
// dictionary entries written into the file header (spec.md §6.1).
type CreatorMetadata struct {
	Name         string
	HasName      bool
	Major        uint8
	HasMajor     bool
	Minor        uint8
	HasMinor     bool
	Patch        uint8
	HasPatch     bool
}

// nativeEndianness returns this machine's endianness marker and byte
// order, so every multi-byte integer the writer emits is in the host's
// native order per spec.md §6.1.
func nativeEndianness() (string, binary.ByteOrder) {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	if probe[0] == 1 {
		return EndiannessLittle, binary.LittleEndian
	}
	return EndiannessBig, binary.BigEndian
}

// Writer emits a Balsa container file: a header followed by zero or
// more ensemble/table blocks.
type Writer struct {
	w     io.Writer
	order binary.ByteOrder
}

// NewWriter writes the signature, endianness marker and file header
// dictionary, and returns a Writer ready to emit blocks.
func NewWriter(w io.Writer, creator CreatorMetadata) (*Writer, error) {
	endianMarker, order := nativeEndianness()

	if err := writeMarker(w, Signature); err != nil {
		return nil, err
	}
	if err := writeMarker(w, endianMarker); err != nil {
		return nil, err
	}

	header := NewDictionary()
	header.SetUint8(keyFileMajorVersion, FileMajorVersion)
	header.SetUint8(keyFileMinorVersion, FileMinorVersion)
	if creator.HasName {
		header.SetString(keyCreatorName, creator.Name)
	}
	if creator.HasMajor {
		header.SetUint8(keyCreatorMajorVer, creator.Major)
	}
	if creator.HasMinor {
		header.SetUint8(keyCreatorMinorVer, creator.Minor)
	}
	if creator.HasPatch {
		header.SetUint8(keyCreatorPatchVer, creator.Patch)
	}
	if err := writeDictionary(w, order, header); err != nil {
		return nil, err
	}

	return &Writer{w: w, order: order}, nil
}

// ByteOrder returns the byte order this writer emits multi-byte values
// in (always the host's native order).
func (wr *Writer) ByteOrder() binary.ByteOrder { return wr.order }

// EnterEnsemble writes the start marker and header dictionary of an
// ensemble block: "frst" | ensemble-header-dict.
func (wr *Writer) EnterEnsemble(classCount, featureCount uint8, featureType TypeTag) error {
	if err := writeMarker(wr.w, markerEnsembleStart); err != nil {
		return err
	}
	header := NewDictionary()
	header.SetUint8(keyClassCount, classCount)
	header.SetUint8(keyFeatureCount, featureCount)
	header.SetString(keyFeatureTypeID, string(featureType))
	return writeDictionary(wr.w, wr.order, header)
}

// LeaveEnsemble writes the ensemble end marker, "tsrf".
func (wr *Writer) LeaveEnsemble() error {
	return writeMarker(wr.w, markerEnsembleEnd)
}

// WriteTreeBlock writes one tree block inside the currently open ensemble.
func WriteTreeBlock[F FeatureValue](wr *Writer, t *TreeData[F]) error {
	return WriteTree(wr.w, wr.order, t)
}

// WriteTableBlock writes a standalone top-level table block.
func WriteTableBlock[T table.Scalar](wr *Writer, t *table.Table[T]) error {
	return WriteTable(wr.w, wr.order, t)
}
