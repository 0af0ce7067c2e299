// Package geomap renders an embeddable Leaflet map centered on a location with a single
// labeled marker. The fragment expects Leaflet's CSS and JS to be loaded by the host page.
package geomap

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

const (
	DefaultZoom   = 4
	DefaultHeight = 400

	tileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	attribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

var idRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var fragmentTmpl = template.Must(template.New("map").Parse(`<div class="leaflet-map" id="{{.ID}}" style="width: 100%; height: {{.Height}}px;"></div>
<script>
    var {{.Var}} = L.map({{.ID}}, {center: [{{.Lat}}, {{.Lon}}], zoom: {{.Zoom}}, zoomControl: true});
    L.tileLayer({{.TileURL}}, {maxZoom: 19, attribution: {{.Attribution}}}).addTo({{.Var}});
    var {{.MarkerVar}} = L.marker([{{.Lat}}, {{.Lon}}]).addTo({{.Var}});
    {{.MarkerVar}}.bindPopup({{.Label}});
    {{.MarkerVar}}.bindTooltip({{.Label}}, {sticky: true});
</script>
`))

// Options controls the rendered map. Zero values take the defaults.
type Options struct {
	ID     string // element id; also the JS variable name. Random when empty.
	Zoom   int
	Height int
}

// Marker is a labeled point on the map.
type Marker struct {
	Lat   float64
	Lon   float64
	Label string
}

// Fragment is the rendered map and what was placed on it.
type Fragment struct {
	ID      string
	HTML    template.HTML
	Markers []Marker
}

// Render builds the map fragment for loc. Popup and tooltip text are exactly loc.Name,
// escaped as JavaScript string literals.
func Render(loc domain.Location, opts Options) (Fragment, error) {
	id := opts.ID
	if id == "" {
		id = "map_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if !idRe.MatchString(id) {
		return Fragment{}, fmt.Errorf("map id %q is not a valid identifier", id)
	}
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	height := opts.Height
	if height <= 0 {
		height = DefaultHeight
	}

	var buf bytes.Buffer
	err := fragmentTmpl.Execute(&buf, map[string]any{
		"ID":          id,
		"Var":         template.JS(id),
		"MarkerVar":   template.JS("marker_" + id),
		"Height":      height,
		"Zoom":        zoom,
		"Lat":         loc.Lat,
		"Lon":         loc.Lon,
		"Label":       loc.Name,
		"TileURL":     tileURL,
		"Attribution": attribution,
	})
	if err != nil {
		return Fragment{}, fmt.Errorf("render map: %w", err)
	}

	return Fragment{
		ID:      id,
		HTML:    template.HTML(buf.String()), //nolint:gosec // produced by html/template above
		Markers: []Marker{{Lat: loc.Lat, Lon: loc.Lon, Label: loc.Name}},
	}, nil
}
