package format

import (
	"encoding/binary"
	"io"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/table"
)

// FileHeader carries the parsed file-level metadata.
type FileHeader struct {
	MajorVersion uint8
	MinorVersion uint8

	CreatorName         string
	HasCreatorName      bool
	CreatorMajorVersion uint8
	HasCreatorMajor     bool
	CreatorMinorVersion uint8
	HasCreatorMinor     bool
	CreatorPatchVersion uint8
	HasCreatorPatch     bool
}

// EnsembleHeader carries the header fields of an ensemble block.
type EnsembleHeader struct {
	ClassCount   uint8
	FeatureCount uint8
	FeatureType  TypeTag
}

// Reader parses a Balsa container file. It requires io.ReadSeeker so
// ReenterEnsemble can seek back to the first tree's offset, and so
// AtTree/AtTable/AtEOF can peek the next marker without consuming it.
type Reader struct {
	r     io.ReadSeeker
	order binary.ByteOrder
	File  FileHeader

	// firstTreeOffset is recorded by EnterEnsemble and consumed by
	// ReenterEnsemble, mirroring BalsaFileParser::reenterForest.
	firstTreeOffset int64
}

// NewReader validates the signature, endianness marker and file header,
// then returns a Reader positioned at the first block.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	sigBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, sigBuf); err != nil {
		return nil, balsaerr.Resource("reading file signature", err)
	}
	if string(sigBuf) != Signature {
		return nil, balsaerr.Format("Invalid file signature")
	}

	endianBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, endianBuf); err != nil {
		return nil, balsaerr.Resource("reading endianness marker", err)
	}
	wantMarker, order := nativeEndianness()
	gotMarker := string(endianBuf)
	if gotMarker != EndiannessLittle && gotMarker != EndiannessBig {
		return nil, balsaerr.Formatf("unrecognized endianness marker %q", gotMarker)
	}
	if gotMarker != wantMarker {
		return nil, balsaerr.Formatf("file endianness %q does not match platform endianness %q", gotMarker, wantMarker)
	}

	header, err := readDictionary(r, order)
	if err != nil {
		return nil, err
	}
	major, ok := header.GetUint8(keyFileMajorVersion)
	if !ok {
		return nil, balsaerr.Format("file header missing file_major_version")
	}
	if major != FileMajorVersion {
		return nil, balsaerr.Formatf("unsupported file major version %d (reader supports %d)", major, FileMajorVersion)
	}
	minor, ok := header.GetUint8(keyFileMinorVersion)
	if !ok {
		return nil, balsaerr.Format("file header missing file_minor_version")
	}

	fh := FileHeader{MajorVersion: major, MinorVersion: minor}
	if name, ok := header.GetString(keyCreatorName); ok {
		fh.CreatorName, fh.HasCreatorName = name, true
	}
	if v, ok := header.GetUint8(keyCreatorMajorVer); ok {
		fh.CreatorMajorVersion, fh.HasCreatorMajor = v, true
	}
	if v, ok := header.GetUint8(keyCreatorMinorVer); ok {
		fh.CreatorMinorVersion, fh.HasCreatorMinor = v, true
	}
	if v, ok := header.GetUint8(keyCreatorPatchVer); ok {
		fh.CreatorPatchVersion, fh.HasCreatorPatch = v, true
	}

	return &Reader{r: r, order: order, File: fh}, nil
}

// ByteOrder returns the order this reader's file was written in (always
// equal to the platform's native order; mismatches fail in NewReader).
func (rd *Reader) ByteOrder() binary.ByteOrder { return rd.order }

// peek reads n bytes then seeks back, reporting them without consuming
// the stream. Used to dispatch AtTree/AtTable/AtEOF/AtEnsemble.
func (rd *Reader) peek(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(rd.r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, balsaerr.Resource("peeking marker", err)
	}
	if _, serr := rd.r.Seek(-int64(read), io.SeekCurrent); serr != nil {
		return nil, balsaerr.Resource("seeking back after peek", serr)
	}
	if read < n {
		return nil, io.EOF
	}
	return buf, nil
}

// AtEOF reports whether the reader is positioned at the end of file.
func (rd *Reader) AtEOF() bool {
	_, err := rd.peek(4)
	return err == io.EOF
}

// AtTree reports whether the reader is positioned at a tree block.
func (rd *Reader) AtTree() bool {
	buf, err := rd.peek(4)
	return err == nil && string(buf) == markerTreeStart
}

// AtTable reports whether the reader is positioned at a table block.
func (rd *Reader) AtTable() bool {
	buf, err := rd.peek(4)
	return err == nil && string(buf) == markerTableStart
}

// AtEnsemble reports whether the reader is positioned at an ensemble block.
func (rd *Reader) AtEnsemble() bool {
	buf, err := rd.peek(4)
	return err == nil && string(buf) == markerEnsembleStart
}

// EnterEnsemble parses the ensemble start marker and header dictionary,
// and records the current offset (the position of the first tree) so
// ReenterEnsemble can seek back to it later.
func (rd *Reader) EnterEnsemble() (EnsembleHeader, error) {
	if err := expectMarker(rd.r, markerEnsembleStart); err != nil {
		return EnsembleHeader{}, err
	}
	header, err := readDictionary(rd.r, rd.order)
	if err != nil {
		return EnsembleHeader{}, err
	}
	classCount, ok := header.GetUint8(keyClassCount)
	if !ok {
		return EnsembleHeader{}, balsaerr.Format("ensemble header missing class_count")
	}
	featureCount, ok := header.GetUint8(keyFeatureCount)
	if !ok {
		return EnsembleHeader{}, balsaerr.Format("ensemble header missing feature_count")
	}
	featureType, ok := header.GetString(keyFeatureTypeID)
	if !ok {
		return EnsembleHeader{}, balsaerr.Format("ensemble header missing feature_type_id")
	}

	offset, err := rd.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return EnsembleHeader{}, balsaerr.Resource("recording tree region offset", err)
	}
	rd.firstTreeOffset = offset

	return EnsembleHeader{ClassCount: classCount, FeatureCount: featureCount, FeatureType: TypeTag(featureType)}, nil
}

// LeaveEnsemble parses the ensemble end marker, "tsrf".
func (rd *Reader) LeaveEnsemble() error {
	return expectMarker(rd.r, markerEnsembleEnd)
}

// ReenterEnsemble seeks back to the offset of the first tree recorded
// by the most recent EnterEnsemble call.
func (rd *Reader) ReenterEnsemble() error {
	if _, err := rd.r.Seek(rd.firstTreeOffset, io.SeekStart); err != nil {
		return balsaerr.Resource("reentering ensemble", err)
	}
	return nil
}

// ParseTree parses one tree block. F must match the ensemble's recorded
// feature type, otherwise a FormatError is returned.
func ParseTree[F FeatureValue](rd *Reader) (*TreeData[F], error) {
	return ReadTree[F](rd.r, rd.order)
}

// ParseTable parses one standalone table block.
func ParseTable[T table.Scalar](rd *Reader) (*table.Table[T], error) {
	return ReadTable[T](rd.r, rd.order)
}
