//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend

	"github.com/gogpu/webgl/render"
)

// ErrNoAdapter is returned when no GPU adapter can be opened.
var ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

// gpuDevice is the HAL device a Context renders on.
type gpuDevice struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	name     string

	// external is true when the device belongs to the host application.
	external bool
}

// openDevice uses the host device when h exposes one and opens a
// standalone device otherwise.
func openDevice(h render.DeviceHandle) (*gpuDevice, error) {
	if h != nil {
		if device, queue, ok := render.HalDevice(h); ok {
			name := h.AdapterInfo().Name
			slogger().Debug("wgpu: using host device", "adapter", name)
			return &gpuDevice{device: device, queue: queue, name: name, external: true}, nil
		}
	}
	return openStandalone()
}

// openStandalone creates a Vulkan instance and opens the first discrete
// or integrated adapter, falling back to whatever adapter comes first.
func openStandalone() (*gpuDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	slogger().Info("wgpu: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return &gpuDevice{
		device:   openDev.Device,
		queue:    openDev.Queue,
		instance: instance,
		name:     selected.Info.Name,
	}, nil
}

// destroy releases the device unless it belongs to the host.
func (d *gpuDevice) destroy() {
	if !d.external {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	// Don't destroy shared resources -- we don't own them.
	d.device = nil
	d.queue = nil
	d.instance = nil
}
