// Package schema validates parsed frontmatter against an optional
// user-supplied JSON schema, grounded on
// github.com/xeipuuv/gojsonschema (a dependency the example pack pulls in
// for exactly this purpose).
package schema

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError is one schema-validation failure, reported with warning
// severity and a JSON-pointer-style path into the frontmatter document.
type ValidationError struct {
	Message      string
	InstancePath string
}

// Schema is a compiled JSON schema, loaded once and reused across files.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses and compiles a JSON schema document once, so repeated
// Validate calls reuse the compiled result instead of recompiling per file.
func Compile(schemaJSON []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, err
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks fm (already-decoded YAML frontmatter, re-marshaled to
// JSON for the validator) against the compiled schema.
func (s *Schema) Validate(fm map[string]interface{}) ([]ValidationError, error) {
	if s == nil {
		return nil, nil
	}
	doc, err := json.Marshal(fm)
	if err != nil {
		return nil, err
	}
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Message:      e.Description(),
			InstancePath: "/" + jsonPointerEscape(e.Field()),
		})
	}
	return errs, nil
}

func jsonPointerEscape(field string) string {
	// gojsonschema reports dotted paths like "tags.0"; convert to a
	// slash-separated JSON pointer, escaping '~' and '/' per RFC 6901.
	out := make([]byte, 0, len(field))
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case '.':
			out = append(out, '/')
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, field[i])
		}
	}
	if string(out) == "(root)" {
		return ""
	}
	return string(out)
}
