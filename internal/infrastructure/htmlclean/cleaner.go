package htmlclean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove []string
	// KeepAttrs is an allowlist; every other attribute is dropped. An empty
	// list keeps all attributes.
	KeepAttrs []string
	// DropHidden removes subtrees marked aria-hidden="true".
	DropHidden         bool
	CollapseWhitespace bool
}

// DefaultCleanConfig keeps what a screen reader needs: text, links, images
// and the identifying attributes of interactive elements.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "iframe",
		"svg", "canvas", "video", "audio",
		"link", "meta", "head", "template",
	},
	KeepAttrs: []string{
		"href", "src", "alt", "title", "aria-label", "type", "name", "id", "role",
	},
	DropHidden:         true,
	CollapseWhitespace: true,
}

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	spaceInTag = regexp.MustCompile(`>\s+<`)
)

type Cleaner struct {
	cfg CleanConfig
}

func New(cfg CleanConfig) *Cleaner {
	return &Cleaner{cfg: cfg}
}

// Clean returns the cleaned inner HTML of <body>. Input that cannot be
// parsed is returned unchanged.
func (c *Cleaner) Clean(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findBodyNode(doc)
	if body == nil {
		return rawHTML
	}

	for n := body.FirstChild; n != nil; {
		next := n.NextSibling
		c.cleanNode(n)
		n = next
	}

	result := renderChildren(body)
	if c.cfg.CollapseWhitespace {
		result = spaceRun.ReplaceAllString(result, " ")
		result = spaceInTag.ReplaceAllString(result, "><")
		result = strings.TrimSpace(result)
	}
	return result
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func (c *Cleaner) cleanNode(n *html.Node) {
	if n.Type == html.CommentNode {
		n.Parent.RemoveChild(n)
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if isOneOf(n.Data, c.cfg.TagsToRemove...) || (c.cfg.DropHidden && isHidden(n)) {
		n.Parent.RemoveChild(n)
		return
	}

	n.Attr = c.filterAttributes(n.Attr)

	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		c.cleanNode(child)
		child = next
	}
}

func (c *Cleaner) filterAttributes(attrs []html.Attribute) []html.Attribute {
	if len(c.cfg.KeepAttrs) == 0 {
		return attrs
	}
	var kept []html.Attribute
	for _, attr := range attrs {
		if isOneOf(attr.Key, c.cfg.KeepAttrs...) {
			kept = append(kept, attr)
		}
	}
	return kept
}

func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "aria-hidden" && attr.Val == "true" {
			return true
		}
	}
	return false
}

func renderChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
