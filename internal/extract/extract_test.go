package extract

import (
	"testing"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/site"
)

const pageURL = "https://www.anuschkaleather.com/products/tote-bag"

func newExtractor() *Extractor {
	return New(site.Default(), nil)
}

func TestExtract_AllFields(t *testing.T) {
	body := []byte(`<html><head>
<title>Store title</title>
<meta property="og:image" content="https://cdn.example/og.jpg">
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Tote","image":["https://cdn.example/ld-1.jpg","https://cdn.example/ld-2.jpg"]}
</script>
</head><body>
<h1 class="product__title">
   Hand Painted   Tote Bag
</h1>
<div class="price__regular"><span class="price-item">$198.00</span></div>
<span class="price">$1.00</span>
<figure class="product__media"><img src="//cdn.example/gallery.jpg"></figure>
<div class="product__description"><p>Genuine leather.</p> <p>Hand painted.</p></div>
</body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.Title != "Hand Painted Tote Bag" {
		t.Errorf("unexpected title %q", rec.Title)
	}
	if rec.Price != "$198.00" {
		t.Errorf("unexpected price %q", rec.Price)
	}
	if rec.URL != pageURL {
		t.Errorf("unexpected url %q", rec.URL)
	}
	if rec.ImageURL != "https://cdn.example/ld-1.jpg" {
		t.Errorf("expected first JSON-LD image to win, got %q", rec.ImageURL)
	}
	if src != product.ImageJSONLD {
		t.Errorf("expected json-ld source, got %s", src)
	}
	if rec.Description != "Genuine leather. Hand painted." {
		t.Errorf("unexpected description %q", rec.Description)
	}
}

func TestExtract_Sentinels(t *testing.T) {
	rec, src := newExtractor().Extract(pageURL, []byte(`<html><body><p>nothing here</p></body></html>`))

	if rec.Title != product.TitleUnavailable {
		t.Errorf("expected title sentinel, got %q", rec.Title)
	}
	if rec.Price != product.PriceUnavailable {
		t.Errorf("expected price sentinel, got %q", rec.Price)
	}
	if rec.ImageURL != "" || rec.Description != "" {
		t.Errorf("expected empty image and description, got %+v", rec)
	}
	if src != product.ImageNone {
		t.Errorf("expected no image source, got %s", src)
	}
}

func TestExtract_TitleFallsBackToDocumentTitle(t *testing.T) {
	rec, _ := newExtractor().Extract(pageURL, []byte(`<html><head><title>Wallet | Anuschka</title></head><body><h1>  </h1></body></html>`))

	if rec.Title != "Wallet | Anuschka" {
		t.Errorf("expected document title, got %q", rec.Title)
	}
}

func TestExtract_BlankPreferredTitleFallsThrough(t *testing.T) {
	rec, _ := newExtractor().Extract(pageURL, []byte(`<html><head><title>Store Home</title></head><body><h1 class="product__title"></h1></body></html>`))

	if rec.Title != "Store Home" {
		t.Errorf("expected blank title element to fall through to the next selector, got %q", rec.Title)
	}
}

func TestExtract_JSONLDImageKeptAsWritten(t *testing.T) {
	cases := []struct {
		name  string
		image string
		want  string
	}{
		{"space", "https://cdn.example.com/tote bag.jpg", "https://cdn.example.com/tote bag.jpg"},
		{"percent", "https://cdn.example.com/50%off.jpg", "https://cdn.example.com/50%off.jpg"},
		{"protocol relative", "//cdn.example.com/p.jpg", "https://cdn.example.com/p.jpg"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := []byte(`<html><head>
<script type="application/ld+json">{"@type":"Product","image":["` + c.image + `"]}</script>
<meta property="og:image" content="https://cdn.example.com/og.jpg">
</head><body></body></html>`)

			rec, src := newExtractor().Extract(pageURL, body)

			if rec.ImageURL != c.want || src != product.ImageJSONLD {
				t.Errorf("expected %q from json-ld, got %q from %s", c.want, rec.ImageURL, src)
			}
		})
	}
}

func TestExtract_OpenGraphKeptAsWritten(t *testing.T) {
	body := []byte(`<html><head><meta property="og:image" content="/files/og image.jpg"></head><body></body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.ImageURL != "/files/og image.jpg" || src != product.ImageOpenGraph {
		t.Errorf("expected og:image content unchanged, got %q from %s", rec.ImageURL, src)
	}
}

func TestExtract_OpenGraphSkipsEmptyTag(t *testing.T) {
	body := []byte(`<html><head>
<meta property="og:image" content="">
<meta property="og:image" content="https://cdn.example.com/second.jpg">
</head><body></body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.ImageURL != "https://cdn.example.com/second.jpg" || src != product.ImageOpenGraph {
		t.Errorf("expected first non-empty og:image, got %q from %s", rec.ImageURL, src)
	}
}

func TestExtract_OpenGraphInBody(t *testing.T) {
	body := []byte(`<html><head></head><body>
<meta property="og:image" content="https://cdn.example.com/body.jpg">
<figure class="product__media"><img src="//cdn.example.com/gallery.jpg"></figure>
</body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.ImageURL != "https://cdn.example.com/body.jpg" || src != product.ImageOpenGraph {
		t.Errorf("expected og:image from body ahead of gallery, got %q from %s", rec.ImageURL, src)
	}
}

func TestExtract_OpenGraphFallback(t *testing.T) {
	body := []byte(`<html><head>
<meta property="og:image" content="https://cdn.example/og.jpg">
<script type="application/ld+json">{ this is not json at all</script>
</head><body>
<figure class="product__media"><img src="/files/gallery.jpg"></figure>
</body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.ImageURL != "https://cdn.example/og.jpg" {
		t.Errorf("expected og:image, got %q", rec.ImageURL)
	}
	if src != product.ImageOpenGraph {
		t.Errorf("expected open-graph source, got %s", src)
	}
}

func TestExtract_OpenGraphWhenProductHasNoImage(t *testing.T) {
	body := []byte(`<html><head>
<script type="application/ld+json">{"@type":"Organization","logo":"https://cdn.example/logo.png"}</script>
<script type="application/ld+json">{"@type":"Product","name":"Tote"}</script>
<meta property="og:image" content="https://cdn.example/og.jpg">
</head><body></body></html>`)

	rec, src := newExtractor().Extract(pageURL, body)

	if rec.ImageURL != "https://cdn.example/og.jpg" || src != product.ImageOpenGraph {
		t.Errorf("expected og:image fallback, got %q from %s", rec.ImageURL, src)
	}
}

func TestExtract_SelectorImage(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "protocol relative",
			html: `<figure class="product__media"><img src="//cdn/x.jpg"></figure>`,
			want: "https://cdn/x.jpg",
		},
		{
			name: "relative path",
			html: `<div class="product-image-main"><img src="/cdn/shop/files/x.jpg"></div>`,
			want: "https://www.anuschkaleather.com/cdn/shop/files/x.jpg",
		},
		{
			name: "lazy loaded",
			html: `<img class="product__image" data-src="//cdn/lazy.jpg">`,
			want: "https://cdn/lazy.jpg",
		},
		{
			name: "skips images without a source",
			html: `<figure class="product__media"><img alt="placeholder"></figure><img class="product__image" src="https://cdn/y.jpg">`,
			want: "https://cdn/y.jpg",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec, src := newExtractor().Extract(pageURL, []byte("<html><body>"+c.html+"</body></html>"))
			if rec.ImageURL != c.want {
				t.Errorf("expected %q, got %q", c.want, rec.ImageURL)
			}
			if src != product.ImageSelector {
				t.Errorf("expected selector source, got %s", src)
			}
		})
	}
}

func TestExtract_WithSelectors(t *testing.T) {
	ex := New(site.Default(), nil, WithSelectors(Selectors{Price: []string{".sale-price"}}))

	rec, _ := ex.Extract(pageURL, []byte(`<html><body><h1>Clutch</h1><span class="sale-price">$88</span><span class="price">$99</span></body></html>`))

	if rec.Price != "$88" {
		t.Errorf("expected custom price selector, got %q", rec.Price)
	}
	if rec.Title != "Clutch" {
		t.Errorf("expected default title selectors to remain, got %q", rec.Title)
	}
}
