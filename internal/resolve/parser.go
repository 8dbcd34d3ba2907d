package resolve

import (
	"regexp"
	"strings"

	"iconpng/internal/model"
)

const (
	pasteHint   = "Paste an import line like: import { BiAddToQueue } from 'react-icons/bi';"
	examplesMsg = "Couldn't parse import. Examples: import { BiAddToQueue } from 'react-icons/bi'; " +
		"import BiAddToQueue from 'react-icons/bi'; const { BiAddToQueue } = require('react-icons/bi');"
)

// Parser turns an import statement into a package path and symbol name.
type Parser struct {
	lib Library

	named       *regexp.Regexp
	defaultImp  *regexp.Regexp
	namespace   *regexp.Regexp
	destructure *regexp.Regexp
	bareRequire *regexp.Regexp

	importAlias  *regexp.Regexp
	requireAlias *regexp.Regexp
}

// NewParser creates a Parser for the given library's naming convention.
func NewParser(lib Library) *Parser {
	// Quotes may be single or double; whitespace is free-form. The optional
	// "X," before the braces admits mixed default+named imports.
	return &Parser{
		lib:          lib,
		named:        regexp.MustCompile(`(?i)import\s*(?:[A-Za-z0-9_$]+\s*,\s*)?\{\s*([^}]*)\}\s*from\s*["']([^"']+)["']`),
		defaultImp:   regexp.MustCompile(`(?i)import\s+([A-Za-z0-9_$]+)\s+from\s*["']([^"']+)["']`),
		namespace:    regexp.MustCompile(`(?i)import\s*\*\s*as\s+([A-Za-z0-9_$]+)\s+from\s*["']([^"']+)["']`),
		destructure:  regexp.MustCompile(`(?i)(?:const|let|var)\s*\{\s*([^}]*)\}\s*=\s*require\s*\(\s*["']([^"']+)["']\s*\)`),
		bareRequire:  regexp.MustCompile(`(?i)(?:const|let|var)\s+([A-Za-z0-9_$]+)\s*=\s*require\s*\(\s*["']([^"']+)["']\s*\)`),
		importAlias:  regexp.MustCompile(`(?i)\s+as\s+`),
		requireAlias: regexp.MustCompile(`(?i)\s*:\s*|\s+as\s+`),
	}
}

// Parse applies the recognized syntaxes in priority order; the first match
// wins. Failures are *model.Error of kind KindParse or KindUnsupported.
func (p *Parser) Parse(text string) (model.Reference, error) {
	line := strings.TrimSpace(text)
	if line == "" {
		return model.Reference{}, model.Errorf(model.KindParse, pasteHint)
	}

	// 1. import { A, B as C } from "path"
	if m := p.named.FindStringSubmatch(line); m != nil {
		if first := firstName(m[1], p.importAlias); first != "" {
			return p.reference(m[2], first), nil
		}
	}

	// 2. import X from "path", only for paths that look like icon packages
	if m := p.defaultImp.FindStringSubmatch(line); m != nil && MatchesConvention(p.lib, m[2]) {
		return p.reference(m[2], m[1]), nil
	}

	// 3. import * as X from "path"
	if m := p.namespace.FindStringSubmatch(line); m != nil {
		return model.Reference{}, model.Errorf(model.KindUnsupported,
			"Namespace imports don't name a single icon. Import one by name: import { SomeIcon } from '%s';", m[2])
	}

	// 4. const { A } = require("path")
	if m := p.destructure.FindStringSubmatch(line); m != nil {
		if first := firstName(m[1], p.requireAlias); first != "" {
			return p.reference(m[2], first), nil
		}
	}

	// 5. const X = require("path")
	if m := p.bareRequire.FindStringSubmatch(line); m != nil {
		return model.Reference{}, model.Errorf(model.KindUnsupported,
			"require() without destructuring doesn't name a single icon. Use: const { SomeIcon } = require('%s');", m[2])
	}

	return model.Reference{}, model.Errorf(model.KindParse, examplesMsg)
}

// FromFields builds a reference from separately edited fields, normalizing
// the package path the same way Parse does.
func (p *Parser) FromFields(packagePath, symbol string) (model.Reference, error) {
	packagePath = strings.TrimSpace(packagePath)
	symbol = strings.TrimSpace(symbol)
	if packagePath == "" || symbol == "" {
		return model.Reference{}, model.Errorf(model.KindParse, "both a package path and an icon name are required")
	}
	return p.reference(packagePath, symbol), nil
}

func (p *Parser) reference(path, symbol string) model.Reference {
	return model.Reference{
		PackagePath: Normalize(p.lib, path),
		SymbolName:  strings.TrimSpace(symbol),
	}
}

// firstName returns the first comma-separated binding, before any alias.
func firstName(list string, alias *regexp.Regexp) string {
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		return strings.TrimSpace(alias.Split(part, 2)[0])
	}
	return ""
}
