package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// config is the demo scene configuration. A TOML file may set any field:
//
//	width = 800
//	height = 600
//	frames = 120
//	backend = "software"
//	texture = "crate.png"
//	output = "last.png"
//	clear_color = [0.1, 0.1, 0.15, 1.0]
type config struct {
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	Frames     int        `toml:"frames"`
	Backend    string     `toml:"backend"`
	Texture    string     `toml:"texture"`
	Output     string     `toml:"output"`
	ClearColor [4]float32 `toml:"clear_color"`
}

func defaultConfig() config {
	return config{
		Width:      640,
		Height:     480,
		Frames:     60,
		ClearColor: [4]float32{0.1, 0.1, 0.15, 1},
	}
}

// load overlays the values set in the TOML file at path.
func (c *config) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%s: invalid size %dx%d", path, c.Width, c.Height)
	}
	return nil
}
