// Package expression parses the {{ scope.path | default }} template
// references embedded in workflow node configs, input bindings and edge
// conditions. It is an untyped templating convention, not an expression
// language: malformed or unterminated expressions simply yield no match.
package expression

import (
	"regexp"
	"strings"
)

// {{ scope.path }} or {{ scope.path | default }}
var refPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z0-9_][A-Za-z0-9_.\-\[\]]*)\s*(?:\|\s*([^}]*?)\s*)?\}\}`)

// ScopeParams is the scope whose references resolve against bound
// parameter sets.
const ScopeParams = "params"

// ScopeNodes references an upstream node's output field.
const ScopeNodes = "nodes"

// Ref is one parsed template reference.
type Ref struct {
	Scope   string
	Path    string
	Default string
}

// Code returns the first dot-delimited segment of the path: the external
// code a params/nodes reference is bound by.
func (r Ref) Code() string {
	if i := strings.IndexByte(r.Path, '.'); i >= 0 {
		return r.Path[:i]
	}
	return r.Path
}

// Refs extracts every template reference from a single string.
func Refs(s string) []Ref {
	if !strings.Contains(s, "{{") {
		return nil
	}
	var refs []Ref
	for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
		refs = append(refs, Ref{Scope: m[1], Path: m[2], Default: m[3]})
	}
	return refs
}

// ScanValue walks an untyped JSON-shaped value (string | list | map) and
// extracts every template reference from its string leaves. The walk is an
// iterative worklist, so arbitrarily deep values cannot exhaust the stack.
func ScanValue(v interface{}) []Ref {
	var refs []Ref
	work := []interface{}{v}
	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]
		switch val := item.(type) {
		case string:
			refs = append(refs, Refs(val)...)
		case []interface{}:
			for _, elem := range val {
				work = append(work, elem)
			}
		case map[string]interface{}:
			for _, elem := range val {
				work = append(work, elem)
			}
		}
	}
	return refs
}

// ParamCodes collects the deduplicated parameter codes referenced by a
// value; only params-scoped references contribute.
func ParamCodes(v interface{}) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, ref := range ScanValue(v) {
		if ref.Scope != ScopeParams {
			continue
		}
		code := ref.Code()
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
