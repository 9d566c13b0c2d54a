package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Context maps placeholder names to their values for one file.
type Context map[string]string

// placeholderRe matches {name} tokens. Names are word characters only, so
// literal braces and malformed tokens pass through untouched.
var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Resolve expands {placeholder} tokens in template from ctx in a single
// pass. Placeholders with no context entry are left verbatim rather than
// erroring: templates are user-authored and missing metadata must not fail
// a job. Resolution is deterministic: the same template and context always
// produce the same string.
func Resolve(template string, ctx Context) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := ctx[name]; ok {
			return v
		}
		return tok
	})
}

// NewContext builds the base placeholder set for one source file: {stem}
// from the source filename, {ext} for the output extension, and a 1-based
// {index}. Index values below 1 default to 1 (single-file runs have no
// batch position).
func NewContext(srcPath, ext string, index int) Context {
	if index < 1 {
		index = 1
	}
	base := filepath.Base(srcPath)
	return Context{
		"stem":  strings.TrimSuffix(base, filepath.Ext(base)),
		"ext":   ext,
		"index": strconv.Itoa(index),
	}
}

// WithMetadata returns a copy of ctx extended with metadata tag values,
// each expanded once against the base context. Metadata values may use
// {stem}/{ext}/{index} but are not resolved against each other; a single
// expansion pass avoids reference cycles.
func (c Context) WithMetadata(tags [][2]string) Context {
	out := make(Context, len(c)+len(tags))
	for k, v := range c {
		out[k] = v
	}
	for _, kv := range tags {
		out[kv[0]] = Resolve(kv[1], c)
	}
	return out
}
