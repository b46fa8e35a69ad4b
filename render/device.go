// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host application (e.g., gogpu.App) implements DeviceHandle and passes
// it to webgl.NewSurface, so surfaces share the host's GPU device instead
// of opening their own.
//
// Providers that expose the HAL layer implement two extra methods:
//
//	HalDevice() any // hal.Device
//	HalQueue() any  // hal.Queue
//
// Use HalDevice to extract them.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// webgl-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HalDevice extracts the HAL device and queue from a DeviceHandle.
// ok is false when h does not expose them or exposes foreign types.
func HalDevice(h DeviceHandle) (device hal.Device, queue hal.Queue, ok bool) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, isHal := h.(halProvider)
	if !isHal {
		return nil, nil, false
	}
	device, ok = hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, false
	}
	queue, ok = hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, false
	}
	return device, queue, true
}

// HalDeviceHandle is a DeviceHandle over an already opened HAL device.
// Useful for headless hosts and tests that open a device themselves.
type HalDeviceHandle struct {
	device hal.Device
	queue  hal.Queue
	info   gpucontext.AdapterInfo
}

// NewHalDeviceHandle wraps an open HAL device and its queue.
func NewHalDeviceHandle(device hal.Device, queue hal.Queue, info gpucontext.AdapterInfo) *HalDeviceHandle {
	return &HalDeviceHandle{device: device, queue: queue, info: info}
}

// Device returns the HAL device.
func (h *HalDeviceHandle) Device() gpucontext.Device { return h.device }

// Queue returns the HAL queue.
func (h *HalDeviceHandle) Queue() gpucontext.Queue { return h.queue }

// Adapter returns nil; the adapter is owned by whoever opened the device.
func (h *HalDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns the adapter metadata given at construction.
func (h *HalDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return h.info }

// SurfaceFormat returns undefined: the handle has no window surface.
func (h *HalDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// HalDevice returns the device as hal.Device.
func (h *HalDeviceHandle) HalDevice() any { return h.device }

// HalQueue returns the queue as hal.Queue.
func (h *HalDeviceHandle) HalQueue() any { return h.queue }

// TextureDescriptor describes parameters for creating a 2D texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// MipLevelCount is the number of mipmap levels.
	// Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DefaultTextureDescriptor returns a TextureDescriptor with sensible defaults.
// Only Width, Height, and Format need to be set.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	}
}

// HAL converts the descriptor for hal.Device.CreateTexture.
func (d TextureDescriptor) HAL() *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         d.Label,
		Size:          hal.Extent3D{Width: d.Width, Height: d.Height, DepthOrArrayLayers: 1},
		MipLevelCount: max(d.MipLevelCount, 1),
		SampleCount:   max(d.SampleCount, 1),
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.Format,
		Usage:         d.Usage,
	}
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure the handles implement DeviceHandle.
var (
	_ DeviceHandle = NullDeviceHandle{}
	_ DeviceHandle = (*HalDeviceHandle)(nil)
)
