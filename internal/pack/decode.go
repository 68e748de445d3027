package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrMalformedInput is wrapped by every decode failure.
var ErrMalformedInput = errors.New("pack: malformed input")

// ErrUnsupportedFormat is returned for a file extension no decoder handles.
var ErrUnsupportedFormat = errors.New("pack: unsupported format")

// DecodeError reports which package file failed to decode.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pack: decode %q: %v", e.Name, e.Err)
}

// Unwrap exposes both [ErrMalformedInput] and the underlying decoder error.
func (e *DecodeError) Unwrap() []error { return []error{ErrMalformedInput, e.Err} }

// Format is a package file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the [Format] for a file name by extension. It returns false
// for anything that is not a package file.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// Decode parses data as a [Package], choosing the decoder from name's
// extension. JSON input may contain comments and trailing commas, and its
// keys match case-insensitively. Unknown keys are ignored in every format.
func Decode(name string, data []byte) (*Package, error) {
	format, ok := FormatOf(name)
	if !ok {
		return nil, &DecodeError{Name: name, Err: ErrUnsupportedFormat}
	}

	var (
		pkg Package
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &pkg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &pkg)
	case FormatTOML:
		err = toml.Unmarshal(data, &pkg)
	}
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	return &pkg, nil
}
