package metric

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logfmt/logfmt"
)

type metadata map[string]string

// Name identifies a measured parameter, e.g. the column header of a QC table.  Optional metadata records where
// the series and its limits came from.  Names are marshalled to a string using a modified logfmt, e.g.
// glucose[limits=historical source=workbook]
type Name struct {
	name string
	md   metadata
}

// String marshals the name to a string representation, such as glucose[limits=historical]
func (n Name) String() string {
	md, err := MarshalText(n.md)
	if err != nil {
		md = []byte{}
	}
	return n.name + string(md)
}

// Base returns the parameter name without metadata
func (n Name) Base() string {
	return n.name
}

// NewName returns a new name holding a copy of the metadata
func NewName(name string, md map[string]string) Name {
	n := Name{name: name}
	if md != nil {
		n.md = make(metadata, len(md))
		for k, v := range md {
			n.md[k] = v
		}
	}
	return n
}

// With returns a copy of the name with additional metadata upserted.  An empty value is rendered as an
// @annotation.
func (n Name) With(md map[string]string) Name {
	out := NewName(n.name, n.md)
	if out.md == nil {
		out.md = make(metadata, len(md))
	}
	for k, v := range md {
		out.md[k] = v
	}
	return out
}

// MarshalText will return the metadata encoded as a modified logfmt representation.  Metadata opens with a [
// then is followed by (key, value) pairs k=v in sorted key order, then by annotations starting with @ in
// sorted order.  Close with a ].  Example: [limits=data source=sheet @refreshed]
func MarshalText(m metadata) ([]byte, error) {
	if len(m) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(m))
	ann := make([]string, 0, len(m))
	for k, v := range m {
		switch v {
		case "":
			ann = append(ann, fmt.Sprintf("@%s", k))
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	sort.Strings(ann)

	var b bytes.Buffer
	b.WriteString("[")
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, m[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %v", k, m[k], err)
		}
	}
	if len(keys) > 0 && len(ann) > 0 {
		b.WriteString(" ")
	}
	if len(ann) > 0 {
		b.WriteString(strings.Join(ann, " "))
	}
	b.WriteString("]")
	return b.Bytes(), nil
}
