// internal/style/style.go

// Package style matches selectors against document elements, resolves the
// cascade into per-element declaration lists, and builds the styled tree
// that the layout stage consumes.
package style

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/reflow/internal/css"
)

// -- Selector Matching --

// Matches reports whether the element node matches the given selector text.
// Supported forms are the universal selector "*", a bare tag name, a single
// class selector ".name", and an optional trailing pseudo-class clause
// ":link" or ":any-link". Any other pseudo-class fails the whole selector.
// Non-element nodes never match.
func Matches(n *html.Node, selector string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}

	if strings.Contains(selector, ":") {
		prefix, pseudo, _ := strings.Cut(selector, ":")
		if strings.Contains(pseudo, ":") {
			// Only a single pseudo-class clause is supported.
			return false
		}
		switch pseudo {
		case "link", "any-link":
			// Every link counts as unvisited, so both names share one check.
			if !isLink(n) {
				return false
			}
			return prefix == "" || matchesCompound(n, prefix)
		default:
			return false
		}
	}

	return matchesCompound(n, selector)
}

// matchesCompound evaluates a selector with no pseudo-class clause.
func matchesCompound(n *html.Node, selector string) bool {
	if selector == "*" {
		return true
	}
	if n.Data == selector {
		return true
	}
	if name, ok := strings.CutPrefix(selector, "."); ok {
		return hasClass(n, name)
	}
	return false
}

// isLink reports whether the element is a hyperlink source: an <a> or
// <area> carrying an href attribute, whatever the attribute's value.
func isLink(n *html.Node) bool {
	if n.Data != "a" && n.Data != "area" {
		return false
	}
	_, ok := attribute(n, "href")
	return ok
}

// hasClass reports whether the element's class attribute, split on
// whitespace, contains name exactly.
func hasClass(n *html.Node, name string) bool {
	val, ok := attribute(n, "class")
	if !ok {
		return false
	}
	for _, class := range strings.Fields(val) {
		if class == name {
			return true
		}
	}
	return false
}

// attribute returns the value of the named attribute on the element.
func attribute(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// -- Cascade --

// MatchingRules collects the declarations that apply to the element. Each
// rule with at least one matching selector contributes all of its
// declarations, in stylesheet order, with declaration order preserved
// inside each rule. Nothing is deduplicated or reordered; later entries
// win at lookup time.
func MatchingRules(n *html.Node, sheet *css.Stylesheet) []css.Declaration {
	if sheet == nil {
		return nil
	}
	var decls []css.Declaration
	for _, rule := range sheet.Rules {
		for _, sel := range rule.Selectors {
			if Matches(n, sel) {
				decls = append(decls, rule.Declarations...)
				break
			}
		}
	}
	return decls
}

// -- Styled Tree --

// StyledNode pairs a document element with its resolved declarations.
// Children mirror the element children of the underlying node in document
// order; text, comment, and doctype nodes are dropped.
type StyledNode struct {
	Node       *html.Node
	Properties []css.Declaration
	Children   []*StyledNode
	Parent     *StyledNode
}

// TagName returns the underlying element's tag name.
func (sn *StyledNode) TagName() string {
	if sn.Node == nil {
		return ""
	}
	return sn.Node.Data
}

// BuildTree resolves the stylesheet against the element subtree rooted at
// root and returns the corresponding styled tree. Returns nil when root is
// not an element node.
func BuildTree(root *html.Node, sheet *css.Stylesheet) *StyledNode {
	if root == nil || root.Type != html.ElementNode {
		return nil
	}
	node := &StyledNode{
		Node:       root,
		Properties: MatchingRules(root, sheet),
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		child := BuildTree(c, sheet)
		child.Parent = node
		node.Children = append(node.Children, child)
	}
	return node
}

// BuildTreeParallel styles the root's element subtrees concurrently, at
// most limit at a time, and reassembles them in document order. The result
// is identical to BuildTree. A limit below two falls back to the serial
// build. The first subtree error, or a cancelled context, aborts the pass.
func BuildTreeParallel(ctx context.Context, root *html.Node, sheet *css.Stylesheet, limit int) (*StyledNode, error) {
	if limit < 2 {
		return BuildTree(root, sheet), nil
	}
	if root == nil || root.Type != html.ElementNode {
		return nil, nil
	}

	node := &StyledNode{
		Node:       root,
		Properties: MatchingRules(root, sheet),
	}

	var elems []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			elems = append(elems, c)
		}
	}
	if len(elems) == 0 {
		return node, nil
	}

	children := make([]*StyledNode, len(elems))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range elems {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			children[i] = BuildTree(c, sheet)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, child := range children {
		child.Parent = node
	}
	node.Children = children
	return node, nil
}

// Equal reports whether two styled trees resolve to the same document
// nodes with the same declarations and recursively equal children. Parent
// links are ignored, so subtrees compare the same wherever they hang.
func (sn *StyledNode) Equal(other *StyledNode) bool {
	if sn == nil || other == nil {
		return sn == other
	}
	if sn.Node != other.Node {
		return false
	}
	if len(sn.Properties) != len(other.Properties) || len(sn.Children) != len(other.Children) {
		return false
	}
	for i := range sn.Properties {
		if sn.Properties[i] != other.Properties[i] {
			return false
		}
	}
	for i := range sn.Children {
		if !sn.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
