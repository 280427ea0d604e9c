// internal/css/css.go
package css

// Property names a CSS property (e.g. "display"). Properties are stored
// lower-case; anything not covered by the constants below still flows
// through the cascade untouched.
type Property string

// Value is a raw CSS value string (e.g. "none", "80px"). Values are kept
// uninterpreted until a typed accessor decodes them.
type Value string

// Well-known properties. The constants keep call sites typo-proof; they are
// ordinary strings, not a closed set.
const (
	Width   Property = "width"
	Height  Property = "height"
	Display Property = "display"

	Color           Property = "color"
	BackgroundColor Property = "background-color"

	BorderTopColor    Property = "border-top-color"
	BorderRightColor  Property = "border-right-color"
	BorderBottomColor Property = "border-bottom-color"
	BorderLeftColor   Property = "border-left-color"

	FontFamily Property = "font-family"
	FontSize   Property = "font-size"
	FontStyle  Property = "font-style"

	Margin       Property = "margin"
	MarginTop    Property = "margin-top"
	MarginRight  Property = "margin-right"
	MarginBottom Property = "margin-bottom"
	MarginLeft   Property = "margin-left"

	Padding       Property = "padding"
	PaddingTop    Property = "padding-top"
	PaddingRight  Property = "padding-right"
	PaddingBottom Property = "padding-bottom"
	PaddingLeft   Property = "padding-left"

	BorderWidth       Property = "border-width"
	BorderTopWidth    Property = "border-top-width"
	BorderRightWidth  Property = "border-right-width"
	BorderBottomWidth Property = "border-bottom-width"
	BorderLeftWidth   Property = "border-left-width"
)

// Declaration is a single property-value pair (e.g. display: none).
type Declaration struct {
	Property Property
	Value    Value
}

// Rule applies an ordered list of declarations to any element matched by at
// least one of its selectors. Declaration order is preserved; the cascade
// depends on it.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Stylesheet is an ordered list of rules. Rule order is the cascade order:
// a later rule's declarations land after an earlier rule's in every
// element's resolved property list.
type Stylesheet struct {
	Rules []Rule
}

// Append adds the rules of other after the receiver's own, preserving
// order. Useful for layering a base sheet under author sheets so the author
// declarations win under last-wins lookup.
func (s *Stylesheet) Append(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}
