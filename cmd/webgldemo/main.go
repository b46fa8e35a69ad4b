// Command webgldemo renders a rotating textured cube inside a line loop
// and prints the surface statistics.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/webgl"
	_ "github.com/gogpu/webgl/backend/wgpu" // GPU backend
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML scene config (flags override it)")
		width      = flag.Int("width", 640, "surface width")
		height     = flag.Int("height", 480, "surface height")
		frames     = flag.Int("frames", 60, "frames to render")
		backend    = flag.String("backend", "", "backend name (default: best available)")
		texture    = flag.String("texture", "", "texture path or URL (default: checkerboard)")
		output     = flag.String("output", "", "write the last frame to this PNG file")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		if err := cfg.load(*configPath); err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frames":
			cfg.Frames = *frames
		case "backend":
			cfg.Backend = *backend
		case "texture":
			cfg.Texture = *texture
		case "output":
			cfg.Output = *output
		}
	})

	if *verbose {
		webgl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	opts := []webgl.SurfaceOption{webgl.WithClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], cfg.ClearColor[3])}
	if cfg.Backend != "" {
		opts = append(opts, webgl.WithBackend(cfg.Backend))
	}
	s := webgl.NewSurface(cfg.Width, cfg.Height, opts...)
	defer s.Close()
	if err := s.Err(); err != nil {
		fmt.Println(s.Fallback())
		return err
	}

	tex, err := loadTexture(cfg.Texture)
	if err != nil {
		return err
	}

	sc := newScene(tex)
	aspect := float32(cfg.Width) / float32(cfg.Height)
	for i := range cfg.Frames {
		angle := float32(i) * 0.05
		if err := s.RenderFrame(sc.entities(angle, aspect), sc.settings); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	st := s.Stats()
	log.Printf("Rendered %d frames on %s (%dx%d)", st.Frames, s.Backend(), s.Width(), s.Height())
	log.Printf("Caches: %d shaders, %d programs, %d geometries, %d textures; %d uploads, %d draws",
		st.Shaders, st.Programs, st.Geometries, st.Textures, st.Uploads, st.Draws)

	if cfg.Output != "" {
		return snapshot(s, cfg.Output)
	}
	return nil
}

func loadTexture(locator string) (*webgl.Texture, error) {
	if locator == "" {
		return webgl.NewTexture(checkerboard(64, 8), webgl.Linear), nil
	}
	r := <-webgl.LoadTexture(locator, webgl.Linear)
	return r.Texture, r.Err
}

func snapshot(s *webgl.Surface, path string) error {
	img, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Last frame saved to %s", path)
	return nil
}
