package appmanifest

import (
	"bytes"
	"fmt"
	"strconv"
)

// indentUnit is the indentation step of the pretty printer.
const indentUnit = "    "

// EncodePretty renders the document in the byte layout downstream tooling
// compares against: members in read order, 4-space indentation, ": " after
// keys and no trailing newline.
func (d *Document) EncodePretty() []byte {
	var buf bytes.Buffer

	encodeValue(&buf, d.root, 0)

	return buf.Bytes()
}

// encodeValue appends the rendered value at the given indentation depth.
func encodeValue(buf *bytes.Buffer, v *Value, depth int) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.number)
	case KindString:
		encodeString(buf, v.text)
	case KindArray:
		encodeArray(buf, v.items, depth)
	case KindObject:
		encodeObject(buf, v.members, depth)
	}
}

// encodeArray renders items one per line; an empty array stays on one line.
func encodeArray(buf *bytes.Buffer, items []*Value, depth int) {
	if len(items) == 0 {
		buf.WriteString("[]")
		return
	}

	buf.WriteString("[\n")

	for i, item := range items {
		if i > 0 {
			buf.WriteString(",\n")
		}

		writeIndent(buf, depth+1)
		encodeValue(buf, item, depth+1)
	}

	buf.WriteByte('\n')
	writeIndent(buf, depth)
	buf.WriteByte(']')
}

// encodeObject renders members one per line; an empty object stays on one line.
func encodeObject(buf *bytes.Buffer, members []Member, depth int) {
	if len(members) == 0 {
		buf.WriteString("{}")
		return
	}

	buf.WriteString("{\n")

	for i, member := range members {
		if i > 0 {
			buf.WriteString(",\n")
		}

		writeIndent(buf, depth+1)
		encodeString(buf, member.Key)
		buf.WriteString(": ")
		encodeValue(buf, member.Value, depth+1)
	}

	buf.WriteByte('\n')
	writeIndent(buf, depth)
	buf.WriteByte('}')
}

// encodeString renders a string with the minimal JSON escape set.
// Anything above the control range passes through as UTF-8.
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}

	buf.WriteByte('"')
}

// writeIndent appends depth units of indentation.
func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indentUnit)
	}
}
