package producer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rhuss/strom/pkg/api"
)

const dataDelay = 100 * time.Millisecond

func newData(r *api.DataRequest, opts Options) (Producer, error) {
	switch r.Format {
	case api.FormatCSV:
		parts, err := csvLines(r.Data)
		if err != nil {
			return nil, err
		}
		return fromStrings(parts, opts.Pacer, 0), nil
	case api.FormatXML:
		parts := make([]string, len(r.Data))
		for i, f := range r.Data {
			parts[i] = xmlElement(f)
		}
		return fromStrings(parts, opts.Pacer, dataDelay), nil
	default:
		parts := make([]string, len(r.Data))
		for i, f := range r.Data {
			line, err := jsonLine(f)
			if err != nil {
				return nil, err
			}
			parts[i] = line
		}
		return fromStrings(parts, opts.Pacer, dataDelay), nil
	}
}

// jsonLine renders one field as a single-key JSON object followed by a
// newline, e.g. {"tags": ["a", "b"]}. Separators are ", " and ": " and
// non-ASCII characters are written as \u escapes.
func jsonLine(f api.Field) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	writeASCIIString(&b, f.Key)
	b.WriteString(": ")

	dec := json.NewDecoder(bytes.NewReader(f.Value))
	dec.UseNumber()
	if err := writeValue(&b, dec); err != nil {
		return "", fmt.Errorf("encode value of %q: %w", f.Key, err)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// writeValue copies the next JSON value from dec into b, keeping key order
// and number literals as received.
func writeValue(b *strings.Builder, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		b.WriteByte(byte(v))
		for i := 0; dec.More(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if v == '{' {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				name, ok := key.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", key)
				}
				writeASCIIString(b, name)
				b.WriteString(": ")
			}
			if err := writeValue(b, dec); err != nil {
				return err
			}
		}
		end, err := dec.Token()
		if err != nil {
			return err
		}
		b.WriteByte(byte(end.(json.Delim)))
	case string:
		writeASCIIString(b, v)
	case json.Number:
		b.WriteString(v.String())
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case nil:
		b.WriteString("null")
	}
	return nil
}

// writeASCIIString writes s as a quoted JSON string using only printable
// ASCII. Other runes become \uXXXX, as UTF-16 surrogate pairs above U+FFFF.
func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				b.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}

// csvLines returns the header line and the values line.
func csvLines(fields api.Fields) ([]string, error) {
	keys := fields.Keys()
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = f.Text()
	}

	lines := make([]string, 0, 2)
	for _, record := range [][]string{keys, values} {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(record); err != nil {
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		lines = append(lines, buf.String())
	}
	return lines, nil
}

func xmlElement(f api.Field) string {
	name := xmlName(f.Key)
	var value strings.Builder
	// strings.Builder never fails, so EscapeText cannot either.
	_ = xml.EscapeText(&value, []byte(f.Text()))
	return "<" + name + ">" + value.String() + "</" + name + ">\n"
}

// xmlName maps a key onto a usable element name. Characters outside
// letters, digits, '_', '-' and '.' become '_', and a name that cannot
// start an element gets a leading '_'.
func xmlName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == '.',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" || strings.ContainsRune("-.0123456789", rune(name[0])) {
		name = "_" + name
	}
	return name
}
