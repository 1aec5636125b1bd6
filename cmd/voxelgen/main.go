package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voxelmesh/internal/config"
	"voxelmesh/internal/meshing"
	"voxelmesh/internal/objexport"
	"voxelmesh/internal/preview"
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/world"
)

type options struct {
	configPath string
	initPath   string

	seed    int64
	chunks  string
	extent  string
	height  int
	scale   float64
	noise   string
	workers int
	level   string

	objPath      string
	previewPath  string
	previewMode  string
	previewScale int
	profile      bool
}

func parseFlags(args []string) (options, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("voxelgen", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&o.initPath, "init", "", "write the default configuration to this path and exit")
	fs.Int64Var(&o.seed, "seed", 0, "world seed")
	fs.StringVar(&o.chunks, "chunks", "", "world extent in chunks, x,y,z")
	fs.StringVar(&o.extent, "extent", "", "chunk extent in blocks, x,y,z")
	fs.IntVar(&o.height, "height", 0, "world height used by the mountain rule")
	fs.Float64Var(&o.scale, "scale", 0, "block size in world units")
	fs.StringVar(&o.noise, "noise", "", "noise kind: simplex, perlin or value")
	fs.IntVar(&o.workers, "workers", 0, "concurrent chunk tasks per phase (0 = NumCPU)")
	fs.StringVar(&o.level, "log", "", "log level")
	fs.StringVar(&o.objPath, "obj", "", "write the meshed world as Wavefront OBJ")
	fs.StringVar(&o.previewPath, "preview", "", "write a top-down PNG preview")
	fs.StringVar(&o.previewMode, "preview-mode", string(preview.ModeMaterial), "preview content: biome, height or material")
	fs.IntVar(&o.previewScale, "preview-scale", 4, "preview pixels per column")
	fs.BoolVar(&o.profile, "profile", false, "print phase timings")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

func parseAxis(s string) (config.Axis, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return config.Axis{}, fmt.Errorf("%w: %q is not x,y,z", world.ErrConfiguration, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return config.Axis{}, fmt.Errorf("%w: %q is not x,y,z", world.ErrConfiguration, s)
		}
		v[i] = n
	}
	return config.Axis{X: v[0], Y: v[1], Z: v[2]}, nil
}

// loadConfig reads the config file, if any, and applies flags that were
// given explicitly on top of it.
func loadConfig(o options, set map[string]bool) (config.File, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if set["seed"] {
		cfg.Seed = o.seed
	}
	if set["chunks"] {
		a, err := parseAxis(o.chunks)
		if err != nil {
			return cfg, err
		}
		cfg.Chunks = a
	}
	if set["extent"] {
		a, err := parseAxis(o.extent)
		if err != nil {
			return cfg, err
		}
		cfg.ChunkExtent = a
	}
	if set["height"] {
		cfg.WorldHeight = o.height
	}
	if set["scale"] {
		cfg.BlockScale = o.scale
	}
	if set["noise"] {
		cfg.Noise = o.noise
	}
	if set["workers"] {
		cfg.Workers = o.workers
	}
	if set["log"] {
		cfg.LogLevel = o.level
	}
	return cfg, cfg.Validate()
}

func main() {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true}

	o, set, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if o.initPath != "" {
		if err := config.WriteDefault(o.initPath); err != nil {
			log.WithError(err).Fatal("write default config")
		}
		log.WithField("path", o.initPath).Info("default config written")
		return
	}

	cfg, err := loadConfig(o, set)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	lvl, _ := cfg.Level()
	log.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, log, cfg, o); err != nil {
		log.WithError(err).Fatal("voxelgen failed")
	}
}

func run(ctx context.Context, log *logrus.Logger, cfg config.File, o options) error {
	start := time.Now()

	noise, err := cfg.NoiseField()
	if err != nil {
		return err
	}
	w, err := world.New(cfg.WorldSettings(), noise, log)
	if err != nil {
		return err
	}
	if err := w.GenerateAll(ctx); err != nil {
		return err
	}
	res, err := meshing.MeshWorld(ctx, w)
	if err != nil {
		return err
	}

	st := res.Stats()
	log.WithFields(logrus.Fields{
		"chunks":        w.Len(),
		"meshed_chunks": st.Chunks,
		"materials":     res.Batch.Len(),
		"vertices":      st.Vertices,
		"triangles":     st.Triangles,
		"elapsed":       time.Since(start).Round(time.Millisecond),
	}).Info("world meshed")
	for _, m := range res.Batch.Materials() {
		mesh, _ := res.Batch.Mesh(m)
		log.WithFields(logrus.Fields{
			"material":  m,
			"vertices":  len(mesh.Vertices),
			"triangles": mesh.Triangles(),
		}).Debug("material batch")
	}

	if o.objPath != "" {
		ids, err := cfg.MaterialIDs()
		if err != nil {
			return err
		}
		ost, err := objexport.WriteFile(o.objPath, res, ids)
		if err != nil {
			return fmt.Errorf("export obj: %w", err)
		}
		log.WithFields(logrus.Fields{"path": o.objPath, "objects": ost.Objects, "faces": ost.Faces}).Info("obj written")
	}

	if o.previewPath != "" {
		mode, err := preview.ParseMode(o.previewMode)
		if err != nil {
			return err
		}
		s := w.Settings()
		width, depth := s.Chunks.X*s.ChunkExtent.X, s.Chunks.Z*s.ChunkExtent.Z
		if err := preview.WriteFile(o.previewPath, w.Classifier(), width, depth, mode, o.previewScale); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		log.WithFields(logrus.Fields{"path": o.previewPath, "mode": mode}).Info("preview written")
	}

	if o.profile {
		fmt.Println(profiling.TopN(10))
	}
	return nil
}
