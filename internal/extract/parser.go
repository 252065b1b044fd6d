package extract

import (
	"net/url"
	"strings"

	"jobmate/aggregator-service/internal/diag"
)

// Parser applies FieldRuleSets to page bodies and listing fragments.
// It holds no per-call state and is safe for concurrent use.
type Parser struct {
	diag diag.Sink
}

// NewParser returns a Parser reporting failures to sink (diag.Nop if nil).
func NewParser(sink diag.Sink) *Parser {
	if sink == nil {
		sink = diag.Nop
	}
	return &Parser{diag: sink}
}

// ResolveField tries each rule for field in order and returns the first
// non-empty result, percent-decoded. It returns fallback unchanged when the
// field has no rules or every rule fails.
func (p *Parser) ResolveField(fragment string, field Field, fallback string, rules FieldRuleSet) string {
	approaches, ok := rules[field]
	if !ok {
		return fallback
	}
	for _, rule := range approaches {
		if v := Extract(fragment, rule); v != "" {
			return decode(v)
		}
	}
	p.diag.Warn("no extraction approach matched, using fallback",
		"field", string(field), "approaches", len(approaches))
	return fallback
}

// Segment splits a page body into per-listing fragments using the master
// rules. Each master rule is tried in order; the first one producing at
// least one fragment wins.
func (p *Parser) Segment(body string, rules FieldRuleSet) []string {
	masters, ok := rules[FieldMaster]
	if !ok || len(masters) == 0 {
		p.diag.Warn("rule set has no master approach, cannot segment page")
		return nil
	}
	for _, rule := range masters {
		if fragments := split(body, rule); len(fragments) > 0 {
			return fragments
		}
	}
	p.diag.Warn("no master approach segmented the page", "approaches", len(masters), "bytes", len(body))
	return nil
}

// split cuts body at every rule.Pre and keeps, for each following chunk,
// the text up to the first rule.Post. Text before the first Pre is never
// a listing.
func split(body string, rule Rule) []string {
	if body == "" || rule.Pre == "" || rule.Post == "" {
		return nil
	}
	chunks := strings.Split(body, rule.Pre)
	var out []string
	for _, chunk := range chunks[1:] {
		end := strings.Index(chunk, rule.Post)
		if end < 0 {
			continue
		}
		piece := chunk[:end]
		if rule.KeepPre {
			piece = rule.Pre + piece
		}
		if rule.KeepPost {
			piece += rule.Post
		}
		if piece == "" {
			continue
		}
		out = append(out, piece)
	}
	return out
}

// decode undoes percent-encoding; malformed escapes leave the text as is.
func decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}
