package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// EnvPath names the environment variable that overrides DefaultPath.
const EnvPath = "DEMO_CONFIG"

const DefaultPath = "demo.toml"

// Config holds everything the demo reads at start up. Zero values of optional fields are replaced
// by Default() values when loading.
type Config struct {
	Title  string `toml:"title"`
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`

	// Validation enables VK_LAYER_KHRONOS_validation and the debug report callback
	Validation bool `toml:"validation"`

	// Mesh is an .obj or binary .stl file. Empty selects the built-in cube.
	Mesh           string `toml:"mesh"`
	Texture        string `toml:"texture"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`

	// TargetAspect is the aspect ratio the viewport is fitted to. 0 means Width/Height.
	TargetAspect float32 `toml:"target_aspect"`
}

func Default() Config {
	return Config{
		Title:          "Vulkan Application",
		Width:          800,
		Height:         800,
		Validation:     true,
		Mesh:           "models/chalet.obj",
		Texture:        "textures/chalet.jpg",
		VertexShader:   "shaders_spv/vert.spv",
		FragmentShader: "shaders_spv/frag.spv",
	}
}

// Path returns the config file location, honoring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the TOML file at path on top of Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	return Parse(b)
}

// Parse decodes TOML data on top of Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.TargetAspect < 0 {
		return errors.Errorf("target_aspect must not be negative, got %f", c.TargetAspect)
	}
	if c.Texture == "" {
		return errors.New("texture must be set")
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("vertex_shader and fragment_shader must be set")
	}
	return nil
}

// Aspect resolves the viewport target aspect ratio.
func (c Config) Aspect() float32 {
	if c.TargetAspect > 0 {
		return c.TargetAspect
	}
	return float32(c.Width) / float32(c.Height)
}
