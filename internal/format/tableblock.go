package format

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/binio"
	"github.com/balsa-rf/balsa/internal/table"
)

// WriteTable serializes t as a table block: "tabl" | header dict | raw
// row-major cell data | "lbat" (spec.md §6.1).
func WriteTable[T table.Scalar](w io.Writer, order binary.ByteOrder, t *table.Table[T]) error {
	if err := writeMarker(w, markerTableStart); err != nil {
		return err
	}

	tag, err := scalarTypeTag(zeroOf[T]())
	if err != nil {
		return err
	}
	header := NewDictionary()
	header.SetUint32(keyRowCount, uint32(t.RowCount()))
	header.SetUint32(keyColumnCount, uint32(t.ColumnCount()))
	header.SetString(keyScalarTypeID, string(tag))
	if err := writeDictionary(w, order, header); err != nil {
		return err
	}

	if err := writeCells(w, order, t.Raw()); err != nil {
		return err
	}

	return writeMarker(w, markerTableEnd)
}

func zeroOf[T any]() T {
	var z T
	return z
}

func writeCells[T table.Scalar](w io.Writer, order binary.ByteOrder, cells []T) error {
	if len(cells) == 0 {
		return nil
	}
	tag, err := scalarTypeTag(cells[0])
	if err != nil {
		return err
	}
	size := tag.byteSize()
	buf := binio.GetBuffer(size * len(cells))
	defer binio.ReleaseBuffer(buf)

	for i, v := range cells {
		off := i * size
		putScalar(order, buf[off:off+size], tag, v)
	}
	_, err = w.Write(buf)
	return err
}

func putScalar[T table.Scalar](order binary.ByteOrder, dst []byte, tag TypeTag, v T) {
	switch tag {
	case TagUint8, TagInt8, TagBool:
		dst[0] = byte(anyToUint64(v))
	case TagUint16, TagInt16:
		order.PutUint16(dst, uint16(anyToUint64(v)))
	case TagUint32, TagInt32:
		order.PutUint32(dst, uint32(anyToUint64(v)))
	case TagFloat32:
		order.PutUint32(dst, math.Float32bits(any(v).(float32)))
	case TagFloat64:
		order.PutUint64(dst, math.Float64bits(any(v).(float64)))
	}
}

func anyToUint64[T table.Scalar](v T) uint64 {
	switch av := any(v).(type) {
	case uint8:
		return uint64(av)
	case uint16:
		return uint64(av)
	case uint32:
		return uint64(av)
	case int8:
		return uint64(uint8(av))
	case int16:
		return uint64(uint16(av))
	case int32:
		return uint64(uint32(av))
	case bool:
		if av {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// ReadTable parses a table block whose scalar type must match T exactly;
// a mismatch is a FormatError.
func ReadTable[T table.Scalar](r io.Reader, order binary.ByteOrder) (*table.Table[T], error) {
	if err := expectMarker(r, markerTableStart); err != nil {
		return nil, err
	}
	header, err := readDictionary(r, order)
	if err != nil {
		return nil, err
	}
	rowCount, ok := header.GetUint32(keyRowCount)
	if !ok {
		return nil, balsaerr.Format("table header missing row_count")
	}
	colCount, ok := header.GetUint32(keyColumnCount)
	if !ok {
		return nil, balsaerr.Format("table header missing column_count")
	}
	scalarTypeStr, ok := header.GetString(keyScalarTypeID)
	if !ok {
		return nil, balsaerr.Format("table header missing scalar_type_id")
	}

	wantTag, err := scalarTypeTag(zeroOf[T]())
	if err != nil {
		return nil, err
	}
	if TypeTag(scalarTypeStr) != wantTag {
		return nil, balsaerr.Formatf("table scalar type mismatch: file has %q, expected %q", scalarTypeStr, string(wantTag))
	}

	cellCount, err := binio.SafeMultiply(uint64(rowCount), uint64(colCount))
	if err != nil {
		return nil, balsaerr.Resource("table cell count", err)
	}

	cells, err := readCells[T](r, order, wantTag, cellCount)
	if err != nil {
		return nil, err
	}

	t, err := table.NewWithColumns[T](int(colCount))
	if err != nil {
		return nil, err
	}
	if len(cells) > 0 {
		if err := t.Append(cells); err != nil {
			return nil, err
		}
	} else if rowCount == 0 {
		// Zero-row table: nothing to append, shape already set.
	}

	if err := expectMarker(r, markerTableEnd); err != nil {
		return nil, err
	}
	return t, nil
}

func readCells[T table.Scalar](r io.Reader, order binary.ByteOrder, tag TypeTag, count uint64) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	size := tag.byteSize()
	totalBytes, err := binio.SafeMultiply(count, uint64(size))
	if err != nil {
		return nil, balsaerr.Resource("table cell data size", err)
	}
	buf := binio.GetBuffer(int(totalBytes))
	defer binio.ReleaseBuffer(buf)

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, balsaerr.Resource("reading table cell data", err)
	}

	cells := make([]T, count)
	for i := range cells {
		off := i * size
		cells[i] = getScalar[T](order, buf[off:off+size], tag)
	}
	return cells, nil
}

func getScalar[T table.Scalar](order binary.ByteOrder, src []byte, tag TypeTag) T {
	switch tag {
	case TagUint8:
		return any(src[0]).(T)
	case TagInt8:
		return any(int8(src[0])).(T)
	case TagBool:
		return any(src[0] != 0).(T)
	case TagUint16:
		return any(order.Uint16(src)).(T)
	case TagInt16:
		return any(int16(order.Uint16(src))).(T)
	case TagUint32:
		return any(order.Uint32(src)).(T)
	case TagInt32:
		return any(int32(order.Uint32(src))).(T)
	case TagFloat32:
		return any(math.Float32frombits(order.Uint32(src))).(T)
	case TagFloat64:
		return any(math.Float64frombits(order.Uint64(src))).(T)
	default:
		var zero T
		return zero
	}
}
