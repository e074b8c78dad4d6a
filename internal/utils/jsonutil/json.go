package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
)

// JSONFormat represents the formatting style for JSON output
type JSONFormat int

const (
	// FormatIndented uses indented JSON with 2-space indentation
	FormatIndented JSONFormat = iota
	// FormatMinified removes all whitespace
	FormatMinified
)

// JSONOptions provides configuration for JSON operations
type JSONOptions struct {
	Format       JSONFormat
	IndentPrefix string
	IndentSize   int
}

// DefaultJSONOptions provides default settings for JSON formatting
var DefaultJSONOptions = JSONOptions{
	Format:       FormatIndented,
	IndentPrefix: "",
	IndentSize:   2,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses a single JSON document, keeping numbers as json.Number
func Decode(data []byte) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve numeric precision

	var result interface{}
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}

	// Trailing garbage after the document makes it invalid
	if _, err := decoder.Token(); err == nil {
		return nil, fmt.Errorf("%w: multiple JSON values", errors.ErrUnsupportedFile)
	}

	return result, nil
}

// LoadFile reads and parses a JSON file. Content that is not valid UTF-8 is
// decoded as Latin-1 before parsing.
func LoadFile(fs afero.Fs, path string) (interface{}, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	return Decode(NormalizeText(data))
}

// NormalizeText strips a UTF-8 byte order mark and re-encodes Latin-1 input as UTF-8
func NormalizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}

	var sb strings.Builder
	sb.Grow(len(data) * 2)
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return []byte(sb.String())
}

// DropInvalidUTF8 removes byte sequences that are not valid UTF-8
func DropInvalidUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, nil)
}

// Marshal encodes a value without HTML escaping using the given options
func Marshal(data interface{}, options ...JSONOptions) ([]byte, error) {
	opts := DefaultJSONOptions
	if len(options) > 0 {
		opts = options[0]
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if opts.Format == FormatIndented {
		encoder.SetIndent(opts.IndentPrefix, strings.Repeat(" ", opts.IndentSize))
	}

	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Canonical returns the compact serialization of a value with object keys
// sorted lexicographically. Equal values always produce equal bytes.
func Canonical(data interface{}) ([]byte, error) {
	return Marshal(data, JSONOptions{Format: FormatMinified})
}

// WriteJSON writes a value to a JSON file, creating parent directories as needed
func WriteJSON(fs afero.Fs, path string, data interface{}, options ...JSONOptions) error {
	jsonData, err := Marshal(data, options...)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
		}
	}

	if err := afero.WriteFile(fs, path, append(jsonData, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return nil
}

// PrettyPrint converts a value to a formatted JSON string
func PrettyPrint(data interface{}) (string, error) {
	jsonData, err := Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
