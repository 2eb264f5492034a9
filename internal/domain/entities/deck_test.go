package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckValidate(t *testing.T) {
	tests := []struct {
		name    string
		deck    Deck
		wantErr bool
	}{
		{
			name: "valid deck",
			deck: Deck{ProjectID: "p1", OwnerID: "alice"},
		},
		{
			name:    "missing project ID",
			deck:    Deck{OwnerID: "alice"},
			wantErr: true,
		},
		{
			name:    "missing owner",
			deck:    Deck{ProjectID: "p1"},
			wantErr: true,
		},
		{
			name:    "whitespace project ID",
			deck:    Deck{ProjectID: "   ", OwnerID: "alice"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.deck.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeckDocument(t *testing.T) {
	t.Run("round-trips through set and get", func(t *testing.T) {
		deck := &Deck{ProjectID: "p1", OwnerID: "alice"}
		doc := &DocumentModel{Pages: []Page{
			{Name: "Intro", Component: NewHTMLContent("<h1>Hi</h1>")},
		}}

		require.NoError(t, deck.SetDocument(doc))

		got, err := deck.Document()
		require.NoError(t, err)
		require.Len(t, got.Pages, 1)
		assert.Equal(t, "Intro", got.Pages[0].Name)
		assert.Equal(t, "<h1>Hi</h1>", got.Pages[0].Component.ToHTML())
	})

	t.Run("empty project yields empty document", func(t *testing.T) {
		deck := &Deck{ProjectID: "p1"}
		doc, err := deck.Document()
		require.NoError(t, err)
		assert.Zero(t, doc.PageCount())
	})

	t.Run("malformed project returns error without mutating", func(t *testing.T) {
		deck := &Deck{ProjectID: "p1", Project: "{not json"}
		_, err := deck.Document()
		assert.Error(t, err)
		assert.Equal(t, "{not json", deck.Project)
	})
}

func TestDocumentModelPaging(t *testing.T) {
	doc := &DocumentModel{Pages: []Page{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}}

	t.Run("page by index", func(t *testing.T) {
		page, err := doc.PageByIndex(1)
		require.NoError(t, err)
		assert.Equal(t, "b", page.Name)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := doc.PageByIndex(3)
		require.Error(t, err)
		assert.Equal(t, "Slide 3 not found", err.Error())

		_, err = doc.PageByIndex(-1)
		assert.Error(t, err)
	})

	t.Run("insert at index", func(t *testing.T) {
		d := &DocumentModel{Pages: []Page{{Name: "a"}, {Name: "c"}}}
		at := 1
		idx := d.InsertPage(Page{Name: "b"}, &at)
		assert.Equal(t, 1, idx)
		assert.Equal(t, []string{"a", "b", "c"}, pageNames(d))
	})

	t.Run("nil index appends", func(t *testing.T) {
		d := &DocumentModel{Pages: []Page{{Name: "a"}}}
		idx := d.InsertPage(Page{Name: "b"}, nil)
		assert.Equal(t, 1, idx)
	})

	t.Run("out of range index appends", func(t *testing.T) {
		d := &DocumentModel{Pages: []Page{{Name: "a"}}}
		at := 9
		idx := d.InsertPage(Page{Name: "b"}, &at)
		assert.Equal(t, 1, idx)
	})

	t.Run("remove page", func(t *testing.T) {
		d := &DocumentModel{Pages: []Page{{Name: "a"}, {Name: "b"}}}
		require.NoError(t, d.RemovePage(0))
		assert.Equal(t, []string{"b"}, pageNames(d))
		assert.Error(t, d.RemovePage(5))
	})
}

func pageNames(d *DocumentModel) []string {
	names := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		names = append(names, p.Name)
	}
	return names
}

func TestPageContentJSON(t *testing.T) {
	t.Run("string variant", func(t *testing.T) {
		var c PageContent
		require.NoError(t, json.Unmarshal([]byte(`"<p>hi</p>"`), &c))
		assert.False(t, c.IsLegacy())
		assert.Equal(t, "<p>hi</p>", c.ToHTML())

		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, `"<p>hi</p>"`, string(out))
	})

	t.Run("legacy tree variant", func(t *testing.T) {
		raw := `{"type":"heading","content":"","components":[{"type":"textnode","content":"Hello"}]}`
		var c PageContent
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		assert.True(t, c.IsLegacy())
		assert.Equal(t, "<h1>Hello</h1>", c.ToHTML())
	})

	t.Run("invalid variant", func(t *testing.T) {
		var c PageContent
		assert.Error(t, json.Unmarshal([]byte(`42`), &c))
	})
}

func TestLegacyComponentRender(t *testing.T) {
	t.Run("text nodes are escaped", func(t *testing.T) {
		n := &LegacyComponent{Type: "textnode", Content: `<script>alert("x")</script>`}
		assert.Equal(t, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;", n.render(0))
	})

	t.Run("classes and attributes", func(t *testing.T) {
		n := &LegacyComponent{
			TagName:    "span",
			Classes:    []string{"bold", "large"},
			Attributes: map[string]interface{}{"id": "s1", "class": "ignored"},
		}
		assert.Equal(t, `<span id="s1" class="bold large"></span>`, n.render(0))
	})

	t.Run("unknown type defaults to div", func(t *testing.T) {
		n := &LegacyComponent{Type: "mystery"}
		assert.Equal(t, "<div></div>", n.render(0))
	})

	t.Run("text type renders paragraph", func(t *testing.T) {
		n := &LegacyComponent{Type: "text", Components: []LegacyComponent{
			{Type: "textnode", Content: "body"},
		}}
		assert.Equal(t, "<p>body</p>", n.render(0))
	})

	t.Run("depth bound stops runaway trees", func(t *testing.T) {
		n := &LegacyComponent{TagName: "div"}
		assert.Equal(t, "", n.render(maxLegacyDepth+1))
	})
}
