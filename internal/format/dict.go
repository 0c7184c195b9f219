package format

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/balsa-rf/balsa/internal/balsaerr"
)

// DictEntry is one key/typed-value pair inside a Dictionary block.
type DictEntry struct {
	Key  string
	Tag  TypeTag
	U8   uint8
	U16  uint16
	U32  uint32
	I8   int8
	I16  int16
	I32  int32
	F32  float32
	F64  float64
	Bool bool
	Str  string
}

// Dictionary is an ordered set of key/value entries, used for the file
// header and every table/tree/ensemble header (spec.md §6.1).
type Dictionary struct {
	entries []DictEntry
	index   map[string]int
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

func (d *Dictionary) set(e DictEntry) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[e.Key]; ok {
		d.entries[i] = e
		return
	}
	d.index[e.Key] = len(d.entries)
	d.entries = append(d.entries, e)
}

func (d *Dictionary) get(key string) (DictEntry, bool) {
	i, ok := d.index[key]
	if !ok {
		return DictEntry{}, false
	}
	return d.entries[i], true
}

// SetUint8 stores a ui08-tagged entry.
func (d *Dictionary) SetUint8(key string, v uint8) { d.set(DictEntry{Key: key, Tag: TagUint8, U8: v}) }

// SetUint32 stores a ui32-tagged entry.
func (d *Dictionary) SetUint32(key string, v uint32) {
	d.set(DictEntry{Key: key, Tag: TagUint32, U32: v})
}

// SetString stores a strn-tagged entry.
func (d *Dictionary) SetString(key string, v string) {
	d.set(DictEntry{Key: key, Tag: TagString, Str: v})
}

// SetBool stores a bool-tagged entry.
func (d *Dictionary) SetBool(key string, v bool) { d.set(DictEntry{Key: key, Tag: TagBool, Bool: v}) }

// GetUint8 looks up a ui08 entry.
func (d *Dictionary) GetUint8(key string) (uint8, bool) {
	e, ok := d.get(key)
	if !ok || e.Tag != TagUint8 {
		return 0, false
	}
	return e.U8, true
}

// GetUint32 looks up a ui32 entry.
func (d *Dictionary) GetUint32(key string) (uint32, bool) {
	e, ok := d.get(key)
	if !ok || e.Tag != TagUint32 {
		return 0, false
	}
	return e.U32, true
}

// GetString looks up a strn entry.
func (d *Dictionary) GetString(key string) (string, bool) {
	e, ok := d.get(key)
	if !ok || e.Tag != TagString {
		return "", false
	}
	return e.Str, true
}

func writeMarker(w io.Writer, marker string) error {
	_, err := io.WriteString(w, marker)
	return err
}

func expectMarker(r io.Reader, marker string) error {
	buf := make([]byte, len(marker))
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return balsaerr.Formatf("missing marker %q: unexpected end of data", marker)
		}
		return balsaerr.Resource("reading marker", err)
	}
	if string(buf) != marker {
		return balsaerr.Formatf("expected marker %q, found %q", marker, string(buf))
	}
	return nil
}

// writeDictionary serializes a dictionary block: "dict" | u8 entryCount
// | entries | "tcid".
func writeDictionary(w io.Writer, order binary.ByteOrder, d *Dictionary) error {
	if err := writeMarker(w, markerDictStart); err != nil {
		return err
	}
	if len(d.entries) > 255 {
		return balsaerr.Internal("dictionary has more than 255 entries")
	}
	if _, err := w.Write([]byte{uint8(len(d.entries))}); err != nil {
		return err
	}
	for _, e := range d.entries {
		if err := writeDictEntry(w, order, e); err != nil {
			return err
		}
	}
	return writeMarker(w, markerDictEnd)
}

func writeDictEntry(w io.Writer, order binary.ByteOrder, e DictEntry) error {
	if len(e.Key) > 255 {
		return balsaerr.Internal("dictionary key longer than 255 bytes")
	}
	if _, err := w.Write([]byte{uint8(len(e.Key))}); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Key); err != nil {
		return err
	}
	if _, err := io.WriteString(w, string(e.Tag)); err != nil {
		return err
	}
	switch e.Tag {
	case TagUint8:
		_, err := w.Write([]byte{e.U8})
		return err
	case TagInt8:
		_, err := w.Write([]byte{byte(e.I8)})
		return err
	case TagBool:
		v := byte(0)
		if e.Bool {
			v = 1
		}
		_, err := w.Write([]byte{v})
		return err
	case TagUint16:
		buf := make([]byte, 2)
		order.PutUint16(buf, e.U16)
		_, err := w.Write(buf)
		return err
	case TagInt16:
		buf := make([]byte, 2)
		order.PutUint16(buf, uint16(e.I16))
		_, err := w.Write(buf)
		return err
	case TagUint32:
		buf := make([]byte, 4)
		order.PutUint32(buf, e.U32)
		_, err := w.Write(buf)
		return err
	case TagInt32:
		buf := make([]byte, 4)
		order.PutUint32(buf, uint32(e.I32))
		_, err := w.Write(buf)
		return err
	case TagFloat32:
		buf := make([]byte, 4)
		order.PutUint32(buf, math.Float32bits(e.F32))
		_, err := w.Write(buf)
		return err
	case TagFloat64:
		buf := make([]byte, 8)
		order.PutUint64(buf, math.Float64bits(e.F64))
		_, err := w.Write(buf)
		return err
	case TagString:
		if len(e.Str) > 255 {
			return balsaerr.Internal("dictionary string value longer than 255 bytes")
		}
		if _, err := w.Write([]byte{uint8(len(e.Str))}); err != nil {
			return err
		}
		_, err := io.WriteString(w, e.Str)
		return err
	default:
		return balsaerr.Internal("unknown dictionary value tag")
	}
}

// readDictionary parses a dictionary block, validating markers and tags.
func readDictionary(r io.Reader, order binary.ByteOrder) (*Dictionary, error) {
	if err := expectMarker(r, markerDictStart); err != nil {
		return nil, err
	}
	var countBuf [1]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, balsaerr.Resource("reading dictionary entry count", err)
	}
	count := int(countBuf[0])

	d := NewDictionary()
	for i := 0; i < count; i++ {
		e, err := readDictEntry(r, order)
		if err != nil {
			return nil, err
		}
		d.set(e)
	}
	if err := expectMarker(r, markerDictEnd); err != nil {
		return nil, err
	}
	return d, nil
}

func readDictEntry(r io.Reader, order binary.ByteOrder) (DictEntry, error) {
	var keyLenBuf [1]byte
	if _, err := io.ReadFull(r, keyLenBuf[:]); err != nil {
		return DictEntry{}, balsaerr.Resource("reading dictionary key length", err)
	}
	keyBuf := make([]byte, keyLenBuf[0])
	if _, err := io.ReadFull(r, keyBuf); err != nil {
		return DictEntry{}, balsaerr.Resource("reading dictionary key", err)
	}
	tagBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, tagBuf); err != nil {
		return DictEntry{}, balsaerr.Resource("reading dictionary value type tag", err)
	}
	tag := TypeTag(tagBuf)
	if err := validateTypeTag(tag); err != nil {
		return DictEntry{}, err
	}

	e := DictEntry{Key: string(keyBuf), Tag: tag}
	switch tag {
	case TagUint8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return DictEntry{}, balsaerr.Resource("reading ui08 value", err)
		}
		e.U8 = b[0]
	case TagInt8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return DictEntry{}, balsaerr.Resource("reading in08 value", err)
		}
		e.I8 = int8(b[0])
	case TagBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return DictEntry{}, balsaerr.Resource("reading bool value", err)
		}
		e.Bool = b[0] != 0
	case TagUint16:
		buf := make([]byte, 2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading ui16 value", err)
		}
		e.U16 = order.Uint16(buf)
	case TagInt16:
		buf := make([]byte, 2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading in16 value", err)
		}
		e.I16 = int16(order.Uint16(buf))
	case TagUint32:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading ui32 value", err)
		}
		e.U32 = order.Uint32(buf)
	case TagInt32:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading in32 value", err)
		}
		e.I32 = int32(order.Uint32(buf))
	case TagFloat32:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading fl32 value", err)
		}
		e.F32 = math.Float32frombits(order.Uint32(buf))
	case TagFloat64:
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading fl64 value", err)
		}
		e.F64 = math.Float64frombits(order.Uint64(buf))
	case TagString:
		var lenBuf [1]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return DictEntry{}, balsaerr.Resource("reading string value length", err)
		}
		strBuf := make([]byte, lenBuf[0])
		if _, err := io.ReadFull(r, strBuf); err != nil {
			return DictEntry{}, balsaerr.Resource("reading string value", err)
		}
		e.Str = string(strBuf)
	}
	return e, nil
}
