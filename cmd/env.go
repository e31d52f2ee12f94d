package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/config"
	"github.com/sells-group/retail-presence/internal/fetcher"
	"github.com/sells-group/retail-presence/internal/geo"
	"github.com/sells-group/retail-presence/internal/imageref"
	"github.com/sells-group/retail-presence/internal/presence"
	"github.com/sells-group/retail-presence/internal/source"
	"github.com/sells-group/retail-presence/internal/store"
)

// appEnv holds everything the serve, check and export commands share.
type appEnv struct {
	Store      *store.Store
	Service    *presence.Service
	Boundaries *geo.Boundaries // nil without a district shapefile
	Images     *imageref.Resolver
}

// Close releases the dataset sources.
func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close sources", zap.Error(err))
		}
	}
}

// openSources resolves the board and posm sources from config.
func openSources(c *config.Config) (board, posm source.Source, err error) {
	timeout := time.Duration(c.Data.HTTPTimeoutSecs) * time.Second
	opts := source.Options{
		Fetcher: fetcher.NewMux(fetcher.Options{
			HTTP: fetcher.HTTPOptions{UserAgent: "retail-presence", Timeout: timeout},
			FTP:  fetcher.FTPOptions{Timeout: timeout},
		}),
		TempDir: c.Data.TempDir,
	}

	board, err = source.Open(store.BoardDataset, c.Data.BoardSource, opts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open board source")
	}
	posm, err = source.Open(store.PosmDataset, c.Data.PosmSource, opts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open posm source")
	}
	return board, posm, nil
}

// initEnv builds the store, boundaries and service. Nothing is loaded yet;
// callers run Store.Load and defer env.Close().
func initEnv(c *config.Config) (*appEnv, error) {
	board, posm, err := openSources(c)
	if err != nil {
		return nil, err
	}

	env := &appEnv{
		Store: store.New(board, posm, store.Options{StrictColumns: c.Data.StrictColumns}),
		Images: imageref.NewResolver(imageref.Config{
			Region:        c.Images.Region,
			PublicBaseURL: c.Images.PublicBaseURL,
			Placeholder:   c.Images.PlaceholderURL,
		}),
	}

	if c.Geo.DistrictShapefile != "" {
		b, err := geo.LoadShapefile(c.Geo.DistrictShapefile, c.Geo.DistrictField, c.Data.TempDir)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "load district boundaries")
		}
		zap.L().Info("district boundaries loaded",
			zap.String("path", c.Geo.DistrictShapefile),
			zap.Int("districts", b.Len()),
		)
		env.Boundaries = b
	}

	env.Service = presence.NewService(env.Store, env.Boundaries)
	return env, nil
}
