// Package geo loads district boundary polygons and merges per-district
// values into GeoJSON for the dashboard map.
package geo

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/table"
)

// DefaultNameField is the shapefile attribute holding the district name.
const DefaultNameField = "ADM2_EN"

// ErrNoBoundaries is returned when no district boundaries are configured.
var ErrNoBoundaries = eris.New("geo: no district boundaries loaded")

// District is one boundary polygon.
type District struct {
	Name     string
	Key      string
	Geometry *geom.MultiPolygon
}

// Boundaries is an ordered set of districts, immutable once loaded.
type Boundaries struct {
	Districts []District
}

// Len returns the number of districts.
func (b *Boundaries) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Districts)
}

// LoadShapefile reads district polygons from a .shp file or a .zip archive
// holding one. Archives are extracted under tempDir.
func LoadShapefile(path, nameField, tempDir string) (*Boundaries, error) {
	if nameField == "" {
		nameField = DefaultNameField
	}
	log := zap.L().With(zap.String("component", "geo.loader"))

	shpPath := path
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		extractDir, err := os.MkdirTemp(tempDir, "districts-*")
		if err != nil {
			return nil, eris.Wrap(err, "geo: create extract dir")
		}
		defer os.RemoveAll(extractDir) //nolint:errcheck
		if err := extractZIP(path, extractDir); err != nil {
			return nil, eris.Wrap(err, "geo: extract shapefile archive")
		}
		shpPath, err = findFileByExt(extractDir, ".shp")
		if err != nil {
			return nil, eris.Wrap(err, "geo: find .shp file")
		}
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("geo: shapefile field %s not found", nameField)
	}

	b := &Boundaries{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if shape == nil || name == "" {
			skipped++
			continue
		}
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}
		b.Districts = append(b.Districts, District{Name: name, Key: table.Key(name), Geometry: mp})
	}

	log.Info("district boundaries loaded",
		zap.String("path", path),
		zap.Int("districts", len(b.Districts)),
		zap.Int("skipped", skipped),
	)
	if len(b.Districts) == 0 {
		return nil, eris.Wrapf(ErrNoBoundaries, "shapefile %s", path)
	}
	return b, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon,
// one polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(p.Points)) {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("geo: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geo: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// extractZIP extracts a ZIP archive into destDir, flattening directories.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
