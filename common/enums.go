// Package common holds enums shared by configuration and command packages.
package common

import (
	"fmt"
	"strings"
)

// FilenameTag selects the comment put in front of every compiled file when
// several files are concatenated.
type FilenameTag int

const (
	// FilenameTagNone writes no comment.
	FilenameTagNone FilenameTag = iota
	// FilenameTagFull writes the full source path.
	FilenameTagFull
	// FilenameTagRelative writes the source path relative to the input root.
	FilenameTagRelative
)

var filenameTagNames = []string{"none", "full", "relative"}

// FilenameTagNames returns all valid names, for usage messages.
func FilenameTagNames() []string {
	return append([]string(nil), filenameTagNames...)
}

func (t FilenameTag) String() string {
	if t >= 0 && int(t) < len(filenameTagNames) {
		return filenameTagNames[t]
	}
	return fmt.Sprintf("FilenameTag(%d)", int(t))
}

// ParseFilenameTag converts a name into FilenameTag, case insensitively.
func ParseFilenameTag(name string) (FilenameTag, error) {
	for i, n := range filenameTagNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return FilenameTag(i), nil
		}
	}
	return FilenameTagNone, fmt.Errorf("%q is not a valid FilenameTag, try [%s]", name, strings.Join(filenameTagNames, ", "))
}

func (t FilenameTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FilenameTag) UnmarshalText(text []byte) error {
	v, err := ParseFilenameTag(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SourceKind tells where compiled text came from.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceArchive
	SourceStdin
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceArchive:
		return "archive"
	case SourceStdin:
		return "stdin"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}
