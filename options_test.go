package webgl

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/webgl/backend"
	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/render"
)

// TestDefaultOptions tests the option defaults.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if !o.depthTest {
		t.Error("depth test should be enabled by default")
	}
	if o.backend != "" || o.ctx != nil || o.device != nil {
		t.Errorf("defaultOptions() = %+v, want no backend, context or device", o)
	}
	if o.clearColor != [4]float32{} {
		t.Errorf("clearColor = %v, want transparent black", o.clearColor)
	}
}

// TestSurfaceOptions tests that every option sets its field.
func TestSurfaceOptions(t *testing.T) {
	sw, err := backend.NewSoftware(backend.Config{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("NewSoftware() error = %v", err)
	}
	defer sw.Close()
	device := render.NewHalDeviceHandle(nil, nil, gpucontext.AdapterInfo{})

	tests := []struct {
		name  string
		opt   SurfaceOption
		check func(o surfaceOptions) bool
	}{
		{"backend", WithBackend("software"), func(o surfaceOptions) bool { return o.backend == "software" }},
		{"context", WithContext(sw), func(o surfaceOptions) bool { return o.ctx == sw }},
		{"device", WithDevice(device), func(o surfaceOptions) bool { return o.device == device }},
		{"clear color", WithClearColor(0.1, 0.2, 0.3, 0.4), func(o surfaceOptions) bool {
			return o.clearColor == [4]float32{0.1, 0.2, 0.3, 0.4}
		}},
		{"depth test", WithDepthTest(false), func(o surfaceOptions) bool { return !o.depthTest }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			if !tt.check(o) {
				t.Errorf("option not applied: %+v", o)
			}
		})
	}
}

// TestNewSurfaceDefault tests that the best registered backend is used.
func TestNewSurfaceDefault(t *testing.T) {
	s := NewSurface(100, 80)
	defer s.Close()

	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if s.Backend() != backend.BackendSoftware {
		t.Errorf("Backend() = %q, want %q", s.Backend(), backend.BackendSoftware)
	}
	if s.Width() != 100 || s.Height() != 80 {
		t.Errorf("size = %dx%d, want 100x80", s.Width(), s.Height())
	}
}

// TestWithContextResizes tests that an injected context is sized to the surface.
func TestWithContextResizes(t *testing.T) {
	sw, err := backend.NewSoftware(backend.Config{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("NewSoftware() error = %v", err)
	}

	s := NewSurface(64, 32, WithContext(sw))
	defer s.Close()
	if w, h := sw.Size(); w != 64 || h != 32 {
		t.Errorf("context Size() = %dx%d, want 64x32", w, h)
	}

	bad := NewSurface(0, 32, WithContext(sw))
	if err := bad.Err(); !errors.Is(err, gpucore.ErrInvalidSize) {
		t.Errorf("Err() = %v, want ErrInvalidSize", err)
	}
}

// TestWithDeviceReachesFactory tests that the device is passed to the backend.
func TestWithDeviceReachesFactory(t *testing.T) {
	var got backend.Config
	backend.Register("capture", func(cfg backend.Config) (gpucore.Context, error) {
		got = cfg
		return backend.NewSoftware(cfg)
	})
	t.Cleanup(func() { backend.Unregister("capture") })

	device := render.NewHalDeviceHandle(nil, nil, gpucontext.AdapterInfo{Name: "test"})
	s := NewSurface(16, 16, WithBackend("capture"), WithDevice(device))
	defer s.Close()

	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got.Device != device || got.Width != 16 || got.Height != 16 {
		t.Errorf("factory Config = %+v", got)
	}
}
