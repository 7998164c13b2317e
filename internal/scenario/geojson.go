package scenario

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/geom"
)

// rectAreaTolerance is the relative area mismatch under which a polygon is
// accepted as its bounding rectangle.
const rectAreaTolerance = 1e-9

// LoadObstaclesGeoJSON reads axis-aligned rectangular obstacles from a
// GeoJSON FeatureCollection. Polygon and MultiPolygon features are accepted
// when they exactly fill their bounding box; other features are skipped
// with a warning.
func LoadObstaclesGeoJSON(ctx context.Context, filename string) ([]geom.Rect, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseObstaclesGeoJSON(ctx, data)
}

// ParseObstaclesGeoJSON is LoadObstaclesGeoJSON for in-memory data.
func ParseObstaclesGeoJSON(ctx context.Context, data []byte) ([]geom.Rect, error) {
	logger := ctxlog.FromContext(ctx)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	var rects []geom.Rect
	for i, feature := range fc.Features {
		name := feature.Properties.MustString("name", fmt.Sprintf("feature %d", i))

		var polygons []orb.Polygon
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		default:
			logger.Warn("⚠️  Skipping unsupported obstacle geometry.", "feature", name, "type", feature.Geometry.GeoJSONType())
			continue
		}

		for _, polygon := range polygons {
			r, ok := rectFromPolygon(polygon)
			if !ok {
				logger.Warn("⚠️  Skipping obstacle that is not an axis-aligned rectangle.", "feature", name)
				continue
			}
			rects = append(rects, r)
		}
	}

	logger.Debug("Loaded GeoJSON obstacles.", "features", len(fc.Features), "obstacles", len(rects))
	return rects, nil
}

// rectFromPolygon returns the bounding rectangle of p when p covers it.
func rectFromPolygon(p orb.Polygon) (geom.Rect, bool) {
	if len(p) == 0 || len(p[0]) < 4 {
		return geom.Rect{}, false
	}

	b := p.Bound()
	boxArea := (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
	area := math.Abs(planar.Area(p))
	if math.Abs(area-boxArea) > rectAreaTolerance*math.Max(1, boxArea) {
		return geom.Rect{}, false
	}

	return geom.Rect{XMin: b.Min[0], XMax: b.Max[0], YMin: b.Min[1], YMax: b.Max[1]}, true
}
