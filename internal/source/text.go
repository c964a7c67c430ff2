package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid xz stream: %v", common.ErrUndecodable, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", common.ErrUndecodable, err)
	}
	return out, nil
}

// decodeText converts raw bytes to a string. UTF-8 input must be valid and free of NUL bytes;
// legacy single-byte encodings are decoded with the matching charmap.
func decodeText(data []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		data = bytes.TrimPrefix(data, utf8BOM)
		if bytes.IndexByte(data, 0) >= 0 {
			return "", fmt.Errorf("%w: contains NUL bytes (binary file?)", common.ErrUndecodable)
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: not valid UTF-8 (set input.encoding for legacy files)", common.ErrUndecodable)
		}
		return string(data), nil

	case "windows-1252", "cp1252":
		return decodeCharmap(charmap.Windows1252, data)

	case "latin1", "iso-8859-1":
		return decodeCharmap(charmap.ISO8859_1, data)

	default:
		return "", fmt.Errorf("%w: unknown encoding %q", common.ErrInvalidConfig, encoding)
	}
}

func decodeCharmap(cm *charmap.Charmap, data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: contains NUL bytes (binary file?)", common.ErrUndecodable)
	}
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUndecodable, err)
	}
	return string(out), nil
}

func decodeLines(data []byte, encoding string) ([]string, error) {
	text, err := decodeText(data, encoding)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text on any line ending, keeping blank lines so indexes match the source.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
