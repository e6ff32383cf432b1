// Package render turns resolved resources into documentation output: a plain
// text listing or an OpenAPI 3 document encoded as JSON or YAML.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/broady/restdoc"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", restdoc.Errorf(restdoc.CodeInvalidArgument, "unknown format %q (expected text, json or yaml)", s)
}

// Filename is the default output file name for the format.
func (f Format) Filename() string {
	switch f {
	case FormatJSON:
		return "openapi.json"
	case FormatYAML:
		return "openapi.yaml"
	default:
		return "endpoints.txt"
	}
}

// ContentType is the HTTP content type of the encoded output.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write renders resources in format f to w.
func Write(w io.Writer, f Format, resources []*restdoc.Resource, info Info) error {
	switch f {
	case FormatText:
		return Text(w, resources)
	case FormatJSON, FormatYAML:
		var (
			b   []byte
			err error
		)
		doc := OpenAPI(resources, info)
		if f == FormatJSON {
			b, err = JSON(doc)
		} else {
			b, err = YAML(doc)
		}
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return restdoc.Errorf(restdoc.CodeInvalidArgument, "unknown format %q", f)
}

// Bytes renders resources in format f.
func Bytes(f Format, resources []*restdoc.Resource, info Info) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, resources, info); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON encodes an OpenAPI document as indented JSON.
func JSON(doc any) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return append(b, '\n'), nil
}

// YAML encodes an OpenAPI document as YAML. The document is marshaled to JSON
// first so extensions and custom marshalers apply.
func YAML(doc any) ([]byte, error) {
	j, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	b, err := yaml.JSONToYAML(j)
	if err != nil {
		return nil, fmt.Errorf("encode openapi yaml: %w", err)
	}
	return b, nil
}
