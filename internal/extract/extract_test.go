package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/aggregator-service/internal/extract"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name     string
		haystack string
		rule     extract.Rule
		want     string
	}{
		{"drops both delimiters", "<a>X</a>", extract.Rule{Pre: "<a>", Post: "</a>"}, "X"},
		{"keeps pre", "<a>X</a>", extract.Rule{Pre: "<a>", Post: "</a>", KeepPre: true}, "<a>X"},
		{"keeps post", "<a>X</a>", extract.Rule{Pre: "<a>", Post: "</a>", KeepPost: true}, "X</a>"},
		{"keeps both", "<a>X</a>", extract.Rule{Pre: "<a>", Post: "</a>", KeepPre: true, KeepPost: true}, "<a>X</a>"},
		{"trims whitespace", "<a>  Go Developer \n</a>", extract.Rule{Pre: "<a>", Post: "</a>"}, "Go Developer"},
		{"first occurrence wins", "<a>1</a><a>2</a>", extract.Rule{Pre: "<a>", Post: "</a>"}, "1"},
		{"surrounding text", `id="x" data-id="42" class`, extract.Rule{Pre: `data-id="`, Post: `"`}, "42"},
		{"empty haystack", "", extract.Rule{Pre: "<a>", Post: "</a>"}, ""},
		{"empty pre", "<a>X</a>", extract.Rule{Post: "</a>"}, ""},
		{"empty post", "<a>X</a>", extract.Rule{Pre: "<a>"}, ""},
		{"delimiters as long as haystack", "<a></a>", extract.Rule{Pre: "<a>", Post: "</a>"}, ""},
		{"pre missing", "<b>X</b>", extract.Rule{Pre: "<a>", Post: "</b>"}, ""},
		{"post only before pre", "</a> then <a>X", extract.Rule{Pre: "<a>", Post: "</a>"}, ""},
		{"post overlapping pre is not matched", "xxabay", extract.Rule{Pre: "ab", Post: "ba"}, ""},
		{"empty enclosed text", "<a></a> tail", extract.Rule{Pre: "<a>", Post: "</a>"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, extract.Extract(c.haystack, c.rule))
		})
	}
}
