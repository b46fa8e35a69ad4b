// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the integration layer between webgl surfaces and
// GPU frameworks.
//
// # Key Principle
//
// A surface can RECEIVE a GPU device from the host application instead of
// creating its own. The host passes a DeviceHandle to webgl.WithDevice and
// the wgpu backend renders with the shared device and queue.
//
// # Core Types
//
//   - DeviceHandle: provides GPU device access from the host application
//   - HalDeviceHandle: DeviceHandle over an already opened hal.Device
//   - NullDeviceHandle: DeviceHandle without a device (CPU-only hosts)
//   - TextureDescriptor: 2D texture parameters convertible to HAL
//
// # Example
//
//	handle := render.NewHalDeviceHandle(device, queue, info)
//	surface := webgl.NewSurface(800, 600, webgl.WithDevice(handle))
//	defer surface.Close()
package render
