package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Kind names one of the documents exchanged between host and extension.
type Kind string

const (
	KindManifest Kind = "manifest"
	KindPayload  Kind = "payload"
	KindPage     Kind = "page"
)

// Kinds lists every document kind with an embedded schema.
var Kinds = []Kind{KindManifest, KindPayload, KindPage}

const schemaBaseURL = "https://schemas.launcher.dev/"

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error

	printer = message.NewPrinter(language.English)
)

// ParseKind maps a user supplied name to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q (want manifest, payload or page)", name)
}

// Schema returns the raw JSON Schema for a document kind.
func Schema(k Kind) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + string(k) + ".schema.json")
}

func compileSchemas() {
	c := jsonschema.NewCompiler()
	compiled = make(map[Kind]*jsonschema.Schema, len(Kinds))

	for _, k := range Kinds {
		data, err := Schema(k)
		if err != nil {
			compileErr = fmt.Errorf("failed to read %s schema: %w", k, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("failed to parse %s schema: %w", k, err)
			return
		}
		if err := c.AddResource(schemaBaseURL+string(k)+".schema.json", doc); err != nil {
			compileErr = fmt.Errorf("failed to add %s schema: %w", k, err)
			return
		}
	}

	for _, k := range Kinds {
		sch, err := c.Compile(schemaBaseURL + string(k) + ".schema.json")
		if err != nil {
			compileErr = fmt.Errorf("failed to compile %s schema: %w", k, err)
			return
		}
		compiled[k] = sch
	}
}

// ReadDocument checks that data holds exactly one UTF-8 JSON value with
// nothing but whitespace after it.
func ReadDocument(document string, data []byte) (json.RawMessage, error) {
	if !utf8.Valid(data) {
		return nil, &ParseError{Document: document, Err: errors.New("document is not valid UTF-8")}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ParseError{Document: document, Err: err}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after document")
		} else {
			err = fmt.Errorf("trailing data after document: %w", err)
		}
		return nil, &ParseError{Document: document, Err: err}
	}

	return raw, nil
}

// Validate parses data as a single JSON document and checks it against the
// embedded schema for k. It returns *ParseError or *SchemaError on failure.
func Validate(k Kind, data []byte) (json.RawMessage, error) {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return nil, compileErr
	}

	raw, err := ReadDocument(string(k), data)
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Document: string(k), Err: err}
	}

	if err := compiled[k].Validate(inst); err != nil {
		return nil, toSchemaError(string(k), err)
	}

	return raw, nil
}

func toSchemaError(document string, err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &SchemaError{Document: document, Message: err.Error()}
	}

	leaf, _ := deepestCause(verr)

	path := instancePath(leaf.InstanceLocation)
	msg := leaf.ErrorKind.LocalizedString(printer)
	if req, ok := leaf.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
		path = JoinPath(path, req.Missing[0])
		msg = fmt.Sprintf("missing required field %q", req.Missing[0])
	}

	return &SchemaError{Document: document, Path: path, Message: msg}
}

// deepestCause picks the leaf error pointing furthest into the instance.
// Required errors count one level deeper since they name a child field.
func deepestCause(verr *jsonschema.ValidationError) (*jsonschema.ValidationError, int) {
	if len(verr.Causes) == 0 {
		depth := len(verr.InstanceLocation)
		if _, ok := verr.ErrorKind.(*kind.Required); ok {
			depth++
		}
		return verr, depth
	}

	var best *jsonschema.ValidationError
	bestDepth := -1
	for _, cause := range verr.Causes {
		leaf, depth := deepestCause(cause)
		if depth > bestDepth {
			best, bestDepth = leaf, depth
		}
	}
	return best, bestDepth
}

func instancePath(location []string) string {
	path := ""
	for _, seg := range location {
		if idx, err := strconv.Atoi(seg); err == nil {
			path = JoinPath(path, idx)
			continue
		}
		path = JoinPath(path, seg)
	}
	return path
}
