package format

import (
	"encoding/binary"
	"io"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/table"
)

// FeatureValue is the constraint for the two feature-value variants the
// format supports (spec.md §3).
type FeatureValue interface{ ~float32 | ~float64 }

// TreeData is the on-disk shape of one tree: five parallel Nx1 tables
// plus the header fields, matching the original's TreeData<FeatureType>.
type TreeData[F FeatureValue] struct {
	ClassCount   uint8
	FeatureCount uint8

	LeftChild    *table.Table[uint32]
	RightChild   *table.Table[uint32]
	SplitFeature *table.Table[uint8]
	SplitValue   *table.Table[F]
	Label        *table.Table[uint8]
}

func featureTypeTag[F FeatureValue](zero F) (TypeTag, error) {
	switch any(zero).(type) {
	case float32:
		return TagFloat32, nil
	case float64:
		return TagFloat64, nil
	default:
		return "", balsaerr.Internal("unsupported feature value type")
	}
}

// WriteTree serializes a tree block: "tree" | header dict | five node
// tables in leftChild/rightChild/splitFeature/splitValue/label order |
// "eert" (spec.md §6.1).
func WriteTree[F FeatureValue](w io.Writer, order binary.ByteOrder, t *TreeData[F]) error {
	if err := writeMarker(w, markerTreeStart); err != nil {
		return err
	}
	tag, err := featureTypeTag(zeroOf[F]())
	if err != nil {
		return err
	}
	header := NewDictionary()
	header.SetUint8(keyClassCount, t.ClassCount)
	header.SetUint8(keyFeatureCount, t.FeatureCount)
	header.SetString(keyFeatureTypeID, string(tag))
	if err := writeDictionary(w, order, header); err != nil {
		return err
	}

	if err := WriteTable(w, order, t.LeftChild); err != nil {
		return err
	}
	if err := WriteTable(w, order, t.RightChild); err != nil {
		return err
	}
	if err := WriteTable(w, order, t.SplitFeature); err != nil {
		return err
	}
	if err := WriteTable(w, order, t.SplitValue); err != nil {
		return err
	}
	if err := WriteTable(w, order, t.Label); err != nil {
		return err
	}

	return writeMarker(w, markerTreeEnd)
}

// ReadTree parses a tree block. The feature type recorded in the header
// must match F exactly, or a FormatError is returned.
func ReadTree[F FeatureValue](r io.Reader, order binary.ByteOrder) (*TreeData[F], error) {
	if err := expectMarker(r, markerTreeStart); err != nil {
		return nil, err
	}
	header, err := readDictionary(r, order)
	if err != nil {
		return nil, err
	}
	classCount, ok := header.GetUint8(keyClassCount)
	if !ok {
		return nil, balsaerr.Format("tree header missing class_count")
	}
	featureCount, ok := header.GetUint8(keyFeatureCount)
	if !ok {
		return nil, balsaerr.Format("tree header missing feature_count")
	}
	featureTypeStr, ok := header.GetString(keyFeatureTypeID)
	if !ok {
		return nil, balsaerr.Format("tree header missing feature_type_id")
	}
	wantTag, err := featureTypeTag(zeroOf[F]())
	if err != nil {
		return nil, err
	}
	if TypeTag(featureTypeStr) != wantTag {
		return nil, balsaerr.Formatf("tree has incompatible feature type: file has %q, expected %q", featureTypeStr, string(wantTag))
	}

	t := &TreeData[F]{ClassCount: classCount, FeatureCount: featureCount}

	if t.LeftChild, err = ReadTable[uint32](r, order); err != nil {
		return nil, err
	}
	if t.RightChild, err = ReadTable[uint32](r, order); err != nil {
		return nil, err
	}
	if t.SplitFeature, err = ReadTable[uint8](r, order); err != nil {
		return nil, err
	}
	if t.SplitValue, err = ReadTable[F](r, order); err != nil {
		return nil, err
	}
	if t.Label, err = ReadTable[uint8](r, order); err != nil {
		return nil, err
	}

	if err := expectMarker(r, markerTreeEnd); err != nil {
		return nil, err
	}
	return t, nil
}
