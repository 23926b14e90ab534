package content

import (
	"reflect"
	"testing"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "duplicates collapsed",
			html: `<a href="https://x.com">a</a><a href="https://x.com">b</a>`,
			want: []string{"https://x.com"},
		},
		{
			name: "order of first appearance",
			html: `<a href="b">1</a><a href="a">2</a><a href="b">3</a><a href="c">4</a>`,
			want: []string{"b", "a", "c"},
		},
		{
			name: "values captured verbatim",
			html: `<a href="/relative?x=1&amp;y=2">r</a><a href="not a url">m</a><link href="{{unsubscribe}}">`,
			want: []string{"/relative?x=1&amp;y=2", "not a url", "{{unsubscribe}}"},
		},
		{
			name: "single quotes and empty values ignored",
			html: `<a href='https://single.com'>s</a><a href="">e</a>`,
			want: []string{},
		},
		{
			name: "no links",
			html: "<p>hello</p>",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks(tt.html)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeedLinks(t *testing.T) {
	got := SeedLinks([]string{"https://a.com", "https://b.com"})
	if len(got) != 2 {
		t.Fatalf("len(SeedLinks()) = %d, want 2", len(got))
	}
	for i, url := range []string{"https://a.com", "https://b.com"} {
		if got[i].URL != url || got[i].Clicks != 0 {
			t.Errorf("SeedLinks()[%d] = %+v, want {%s 0}", i, got[i], url)
		}
	}
}
