package build

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return "unknown"
}

// detectUTF looks for byte order mark, UTF-32 marks are checked first since
// UTF-32LE mark starts with UTF-16LE one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(buf, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(buf, []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	case bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps r to decode BOM marked content into UTF-8, the mark is
// removed.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	panic(fmt.Sprintf("unexpected source encoding %d", int(enc)))
}

const charsetPrefix = `@charset "`

// leadingCharset returns label of @charset statement source starts with and
// length of the statement including terminating semicolon.
func leadingCharset(data []byte) (string, int) {
	if !bytes.HasPrefix(data, []byte(charsetPrefix)) {
		return "", 0
	}
	rest := data[len(charsetPrefix):]
	end := bytes.IndexByte(rest, '"')
	if end < 0 || end+1 >= len(rest) || rest[end+1] != ';' {
		return "", 0
	}
	return string(rest[:end]), len(charsetPrefix) + end + 2
}

// decodeSource turns raw source bytes into UTF-8 text. BOM takes precedence,
// otherwise leading @charset statement names encoding of the rest. Statement
// naming anything but UTF-8 is dropped since output is always UTF-8.
func decodeSource(data []byte) (string, error) {
	if enc := detectUTF(data); enc != encUnknown {
		out, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
		if err != nil {
			return "", fmt.Errorf("unable to decode %s source: %w", enc, err)
		}
		return string(out), nil
	}

	if label, n := leadingCharset(data); n > 0 {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return "", fmt.Errorf("unknown @charset %q", label)
		}
		if name != "utf-8" {
			out, err := enc.NewDecoder().Bytes(data[n:])
			if err != nil {
				return "", fmt.Errorf("unable to decode %s source: %w", name, err)
			}
			return strings.TrimLeft(string(out), "\r\n"), nil
		}
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("source is not valid UTF-8, use BOM or @charset to specify encoding")
	}
	return string(data), nil
}
