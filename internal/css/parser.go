// internal/css/parser.go
package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns CSS text into Stylesheet values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse tokenizes CSS text into a Stylesheet. It never fails: at-rules,
// custom properties and anything the tokenizer rejects are skipped, so bad
// input degrades to fewer rules rather than an error. The optional source
// parameter identifies what is being parsed in debug logs.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	// Selectors accumulate across QualifiedRuleGrammar tokens: the parser
	// reports each comma-separated selector of a group on its own before the
	// ruleset body opens.
	var pending []string

	for {
		gt, _, tokenData := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
			p.log.Debug("Skipping @-rule block", zap.String("rule", string(tokenData)))

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(tokenData)))

		case css.QualifiedRuleGrammar:
			pending = append(pending, selectorStrings(tokenData, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, selectorStrings(tokenData, parser.Values())...)
			pending = nil
			decls := p.parseDeclarations(parser)
			if len(selectors) == 0 {
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selectors: selectors, Declarations: decls})
		}
	}
}

// parseDeclarations reads property declarations, in source order, until the
// ruleset closes.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration

	for {
		gt, _, tokenData := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			prop := Property(strings.ToLower(string(tokenData)))
			raw := rawValue(parser.Values())
			if prop == "" || raw == "" {
				continue
			}
			decls = append(decls, Declaration{Property: prop, Value: Value(raw)})

		case css.CustomPropertyGrammar:
			// --var declarations carry no meaning for this engine.
			continue
		}
	}
}

// skipAtRuleBlock discards tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// selectorStrings rebuilds the selector text from prelude tokens and splits
// it on commas into individual selector strings.
func selectorStrings(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for _, s := range strings.Split(sb.String(), ",") {
		// Collapse interior whitespace runs so multi-line selector groups
		// come out as single-spaced strings.
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// rawValue joins value tokens back into a raw value string, collapsing
// whitespace runs to single spaces. A trailing !important marker is
// stripped: the simplified cascade has no importance tiers, so the value is
// kept as if the marker were absent.
func rawValue(values []css.Token) string {
	var sb strings.Builder
	for _, t := range values {
		if t.TokenType == css.WhitespaceToken {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
	}
	raw := strings.TrimSpace(sb.String())

	if n := len(raw) - len("important"); n > 0 && strings.EqualFold(raw[n:], "important") {
		head := strings.TrimSpace(raw[:n])
		if strings.HasSuffix(head, "!") {
			raw = strings.TrimSpace(strings.TrimSuffix(head, "!"))
		}
	}
	return raw
}
