package product

// Sentinels used when a field could not be extracted from a page.
const (
	TitleUnavailable = "N/A"
	PriceUnavailable = "Price not available"
)

// Record is a single product scraped from a retailer page.
// All fields are always present; Title and Price fall back to the sentinels
// above, ImageURL and Description to the empty string.
type Record struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// ImageSource names the extraction tier that produced a Record's ImageURL.
type ImageSource string

const (
	ImageNone      ImageSource = ""
	ImageJSONLD    ImageSource = "json-ld"
	ImageOpenGraph ImageSource = "open-graph"
	ImageSelector  ImageSource = "selector"
)

// String returns "none" for ImageNone so it can be used as a metric label.
func (s ImageSource) String() string {
	if s == ImageNone {
		return "none"
	}
	return string(s)
}
