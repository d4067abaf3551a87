package build

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{"UTF-8 BOM", []byte{0xEF, 0xBB, 0xBF, 0x00}, encUTF8},
		{"UTF-16 Big Endian BOM", []byte{0xFE, 0xFF, 0x00, 0x00}, encUTF16BigEndian},
		{"UTF-16 Little Endian BOM", []byte{0xFF, 0xFE, 0x01, 0x00}, encUTF16LittleEndian},
		{"UTF-32 Big Endian BOM", []byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{"UTF-32 Little Endian BOM", []byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{"No BOM", []byte("a { b: c }"), encUnknown},
		{"Short", []byte{0xFF}, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectReader_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for invalid encoding")
		}
	}()
	selectReader(bytes.NewReader(nil), srcEncoding(999))
}

func encode(t *testing.T, enc encoding.Encoding, text string) []byte {
	t.Helper()
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func TestDecodeSource(t *testing.T) {
	const text = `a { content: "Привет" }`

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain", []byte(text), text},
		{"UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, text...), text},
		{"UTF-16BE", encode(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), text), text},
		{"UTF-16LE", encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), text), text},
		{"UTF-32BE", encode(t, utf32.UTF32(utf32.BigEndian, utf32.UseBOM), text), text},
		{"UTF-32LE", encode(t, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), text), text},
		{"charset dropped", encode(t, charmap.Windows1251, "@charset \"windows-1251\";\n"+text), text},
		{"utf-8 charset kept", []byte("@charset \"UTF-8\";\n" + text), "@charset \"UTF-8\";\n" + text},
		{"unterminated charset ignored", []byte(`@charset "utf-8"`), `@charset "utf-8"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSource(tt.data)
			if err != nil {
				t.Fatalf("decodeSource() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decodeSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeSource_Errors(t *testing.T) {
	if _, err := decodeSource([]byte(`@charset "no-such-charset"; a{}`)); err == nil || !strings.Contains(err.Error(), "no-such-charset") {
		t.Errorf("decodeSource() error = %v, want unknown charset", err)
	}
	if _, err := decodeSource([]byte{'a', '{', 0xC8, 0xE2, '}'}); err == nil {
		t.Error("decodeSource() expected error for invalid UTF-8")
	}
}

func TestLeadingCharset(t *testing.T) {
	label, n := leadingCharset([]byte(`@charset "koi8-r"; a{}`))
	if label != "koi8-r" || n != len(`@charset "koi8-r";`) {
		t.Errorf("leadingCharset() = %q, %d", label, n)
	}
	if label, n := leadingCharset([]byte(`@charset 'koi8-r'; a{}`)); label != "" || n != 0 {
		t.Errorf("single quotes are not valid @charset syntax, got %q, %d", label, n)
	}
}
