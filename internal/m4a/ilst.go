package m4a

import (
	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
	"golang.org/x/text/encoding/unicode"
)

// Well-known data atom type indicators
const (
	dataTypeUTF8    = 1
	dataTypeUTF16BE = 2
)

// itemValue decodes the data atoms of an ilst item. One data atom gives a
// Text value, several give a List. Values are returned exactly as stored.
func itemValue(item *box) types.TagValue {
	var values []string
	for _, c := range item.children {
		if c.typ != "data" || len(c.payload) < 8 {
			continue
		}
		// type indicator (4) + locale (4) precede the value
		kind := binary.Decode[uint32](c.payload, binary.BigEndian) & 0x00FFFFFF
		raw := c.payload[8:]
		if kind == dataTypeUTF16BE {
			if s, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw); err == nil {
				raw = s
			}
		}
		values = append(values, string(raw))
	}

	switch len(values) {
	case 0:
		return types.TagValue{}
	case 1:
		return types.Text(values[0])
	default:
		return types.List(values...)
	}
}

// readTags extracts Title and Artist from an ilst box.
func readTags(ilst *box) types.Tags {
	var tags types.Tags
	if ilst == nil {
		return tags
	}
	if item := ilst.child(keyTitle); item != nil {
		tags.Title = itemValue(item)
	}
	if item := ilst.child(keyArtist); item != nil {
		tags.Artist = itemValue(item)
	}
	return tags
}

// setItem replaces the data atoms of the item key with one UTF-8 data atom
// per value, creating the item when needed. Absent values leave it alone.
func setItem(ilst *box, key string, v types.TagValue) {
	if v.IsZero() {
		return
	}
	item := ilst.ensure(key, func() *box { return &box{typ: key} })

	children := make([]*box, 0, v.Len())
	for s := range v.All() {
		payload := make([]byte, 8, 8+len(s))
		copy(payload, binary.Encode(uint32(dataTypeUTF8), binary.BigEndian))
		payload = append(payload, s...)
		children = append(children, &box{typ: "data", payload: payload, parent: item})
	}
	item.children = children
	item.payload = nil
}

// ilstFor returns the moov/udta/meta/ilst box, creating the missing part of
// the path.
func ilstFor(moov *box) *box {
	udta := moov.ensure("udta", func() *box { return &box{typ: "udta"} })
	meta := udta.ensure("meta", func() *box {
		m := &box{typ: "meta", prefix: []byte{0, 0, 0, 0}}
		m.children = []*box{{typ: "hdlr", payload: handlerPayload(), parent: m}}
		return m
	})
	return meta.ensure("ilst", func() *box { return &box{typ: "ilst"} })
}

// handlerPayload is the hdlr body iTunes writes for metadata.
func handlerPayload() []byte {
	p := make([]byte, 0, 25)
	p = append(p, 0, 0, 0, 0) // version/flags
	p = append(p, 0, 0, 0, 0) // pre_defined
	p = append(p, "mdirappl"...)
	p = append(p, make([]byte, 8)...) // reserved
	return append(p, 0)               // empty name
}
