// Package io reads and writes the GeoJSON surface of the pipeline:
// FeatureCollections of LineString and MultiLineString features.
package io

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tgrayson/netskel/pkg/errors"
)

// ReadLines decodes a GeoJSON FeatureCollection into its linestrings.
// MultiLineString members are flattened; features of any other geometry
// type are ignored and counted in skipped. Malformed input yields an
// INVALID_GEOJSON error.
func ReadLines(r io.Reader) (lines []orb.LineString, skipped int, err error) {
	const stage = "read"
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidGeoJSON, stage, err, "reading input")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidGeoJSON, stage, err, "decoding feature collection")
	}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		default:
			skipped++
		}
	}
	return lines, skipped, nil
}

// WriteLines encodes lines as a GeoJSON FeatureCollection, one feature per
// line.
func WriteLines(w io.Writer, lines []orb.LineString) error {
	const stage = "write"
	fc := geojson.NewFeatureCollection()
	for _, l := range lines {
		fc.Append(geojson.NewFeature(l))
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, stage, err, "encoding feature collection")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, stage, err, "writing output")
	}
	return nil
}
