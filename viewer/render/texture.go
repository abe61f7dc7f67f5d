package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/CU-Production/vrm-viewer/viewer/shading"
	"github.com/CU-Production/vrm-viewer/viewer/texture"
)

// GPUTexture bundles a texture with its view so both can be released
// together.
type GPUTexture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// Release frees the texture and its view.
func (t *GPUTexture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// CreateTexture2D uploads a decoded RGBA image as a sampleable 2D texture.
// Pixel values are stored as-is; color decoding happens in the shader.
//
// Parameters:
//   - label: debug label for the texture
//   - img: decoded RGBA staging image
//
// Returns:
//   - *GPUTexture: uploaded texture and view
//   - error: texture or view creation failure
func (c *Context) CreateTexture2D(label string, img *texture.Image) (*GPUTexture, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(img.Width),
			Height:             uint32(img.Height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("creating texture %s: %w", label, err)
	}

	c.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Width) * 4,
			RowsPerImage: uint32(img.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(img.Width),
			Height:             uint32(img.Height),
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("creating texture view %s: %w", label, err)
	}
	return &GPUTexture{Texture: tex, View: view}, nil
}

// CreateCubemap uploads a baked cubemap with its full mip chain as a
// cube-sampleable texture.
//
// Parameters:
//   - label: debug label for the texture
//   - cm: baked RGBA cubemap
//
// Returns:
//   - *GPUTexture: uploaded cube texture and cube view
//   - error: texture or view creation failure
func (c *Context) CreateCubemap(label string, cm *shading.Cubemap) (*GPUTexture, error) {
	mips := cm.MipCount()
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(cm.Size),
			Height:             uint32(cm.Size),
			DepthOrArrayLayers: shading.FaceCount,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: uint32(mips),
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cubemap %s: %w", label, err)
	}

	for mip := 0; mip < mips; mip++ {
		size := cm.Size >> mip
		if size < 1 {
			size = 1
		}
		for face := 0; face < shading.FaceCount; face++ {
			c.queue.WriteTexture(
				&wgpu.ImageCopyTexture{
					Texture:  tex,
					MipLevel: uint32(mip),
					Origin:   wgpu.Origin3D{Z: uint32(face)},
					Aspect:   wgpu.TextureAspectAll,
				},
				cm.Mips[mip][face],
				&wgpu.TextureDataLayout{
					Offset:       0,
					BytesPerRow:  uint32(size) * 4,
					RowsPerImage: uint32(size),
				},
				&wgpu.Extent3D{
					Width:              uint32(size),
					Height:             uint32(size),
					DepthOrArrayLayers: 1,
				},
			)
		}
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " View",
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   uint32(mips),
		BaseArrayLayer:  0,
		ArrayLayerCount: shading.FaceCount,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("creating cubemap view %s: %w", label, err)
	}
	return &GPUTexture{Texture: tex, View: view}, nil
}

// CreateLUT uploads the BRDF lookup table as a 2D texture.
func (c *Context) CreateLUT(label string, lut *shading.LUT) (*GPUTexture, error) {
	return c.CreateTexture2D(label, &texture.Image{
		Width:  lut.Size,
		Height: lut.Size,
		Pixels: lut.Pixels,
	})
}

// CreateSampler creates a linear-filtering sampler with the given address
// mode, with mipmap filtering enabled.
func (c *Context) CreateSampler(label string, addressMode wgpu.AddressMode) (*wgpu.Sampler, error) {
	samp, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  addressMode,
		AddressModeV:  addressMode,
		AddressModeW:  addressMode,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sampler %s: %w", label, err)
	}
	return samp, nil
}
