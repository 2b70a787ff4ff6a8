package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/FranksOps/shopscout/internal/analyzer"
	"github.com/FranksOps/shopscout/internal/finder"
	"github.com/FranksOps/shopscout/internal/product"
)

// Product is one found product with the query terms its text mentions.
type Product struct {
	product.Record
	Query        string   `json:"query"`
	ImageSource  string   `json:"image_source"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// Summary aggregates one or more product searches.
type Summary struct {
	Searches      int            `json:"searches"`
	Results       int            `json:"results"`
	Rejected      int            `json:"rejected"`
	Duplicates    int            `json:"duplicates"`
	RobotsBlocked int            `json:"robots_blocked"`
	FetchErrors   int            `json:"fetch_errors"`
	Challenges    int            `json:"challenges"`
	SearchErrors  int            `json:"search_errors"`
	ImageSources  map[string]int `json:"image_sources"`
	Products      []Product      `json:"products"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Duration      time.Duration  `json:"duration"`
}

// GenerateSummary folds finder runs into a Summary.
func GenerateSummary(runs []*finder.Run) Summary {
	s := Summary{
		ImageSources: make(map[string]int),
		Products:     []Product{},
	}

	for _, run := range runs {
		if run == nil {
			continue
		}
		st := run.Stats
		end := st.StartedAt.Add(st.Duration)
		if s.Searches == 0 || st.StartedAt.Before(s.StartTime) {
			s.StartTime = st.StartedAt
		}
		if end.After(s.EndTime) {
			s.EndTime = end
		}

		s.Searches++
		s.Results += st.Results
		s.Rejected += st.Rejected
		s.Duplicates += st.Duplicates
		s.RobotsBlocked += st.RobotsBlocked
		s.FetchErrors += st.FetchErrors
		s.Challenges += st.Challenges
		if st.SearchError != "" {
			s.SearchErrors++
		}

		terms := analyzer.Terms(st.Query)
		for _, it := range run.Items {
			s.ImageSources[it.ImageSource.String()]++
			s.Products = append(s.Products, Product{
				Record:       it.Record,
				Query:        st.Query,
				ImageSource:  it.ImageSource.String(),
				MatchedTerms: matchedTerms(it.Record, terms),
			})
		}
	}

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

func matchedTerms(rec product.Record, terms []string) []string {
	matches := analyzer.FindTermMatches(rec.Title+". "+rec.Description, rec.URL, terms)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Term)
	}
	return out
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

var funcs = map[string]any{
	"join": strings.Join,
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Product Search Summary
----------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Searches:      {{.Searches}} ({{.SearchErrors}} failed)
Results:       {{.Results}}
Not products:  {{.Rejected}}
Duplicates:    {{.Duplicates}}
Robots skips:  {{.RobotsBlocked}}
Fetch errors:  {{.FetchErrors}} ({{.Challenges}} bot challenges)
Products:      {{len .Products}}

Image Sources:
{{- range $src, $count := .ImageSources}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}

Products:
{{- range .Products}}
  - {{.Title}} | {{.Price}}
    {{.URL}}
    image: {{if .ImageURL}}{{.ImageURL}} ({{.ImageSource}}){{else}}none{{end}}
    {{- if .MatchedTerms}}
    matches: {{join .MatchedTerms ", "}}
    {{- end}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Funcs(funcs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}

	return nil
}

// WriteHTML writes a product gallery report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Product Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .product { display: inline-block; vertical-align: top; width: 220px; margin: 10px; }
  .product img { width: 220px; height: 220px; object-fit: cover; background: #eee; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Product Search Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Searches</div>
    <div class="stat-val">{{.Searches}}</div>
  </div>
  <div class="stat-card">
    <div>Products</div>
    <div class="stat-val">{{len .Products}}</div>
  </div>
  <div class="stat-card">
    <div>Fetch Errors</div>
    <div class="stat-val" style="color: {{if gt .FetchErrors 0}}red{{else}}green{{end}};">{{.FetchErrors}}</div>
  </div>
  <div class="stat-card">
    <div>Bot Challenges</div>
    <div class="stat-val">{{.Challenges}}</div>
  </div>

  <h3>Image Sources</h3>
  <table>
    <tr><th>Source</th><th>Count</th></tr>
    {{- range $src, $count := .ImageSources}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Products</h3>
  {{- range .Products}}
  <div class="product">
    {{- if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Title}}">{{end}}
    <p><a href="{{.URL}}">{{.Title}}</a><br>{{.Price}}</p>
    {{- if .Description}}<p>{{.Description}}</p>{{end}}
  </div>
  {{- else}}
  <p>None</p>
  {{- end}}
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}

	return nil
}
