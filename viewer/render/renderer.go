package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/CU-Production/vrm-viewer/common"
	"github.com/CU-Production/vrm-viewer/viewer/asset"
	"github.com/CU-Production/vrm-viewer/viewer/camera"
	"github.com/CU-Production/vrm-viewer/viewer/geometry"
	"github.com/CU-Production/vrm-viewer/viewer/logging"
	"github.com/CU-Production/vrm-viewer/viewer/settings"
	"github.com/CU-Production/vrm-viewer/viewer/shading"
	"github.com/CU-Production/vrm-viewer/viewer/texture"
)

// ambientColor is the constant ambient term added on top of the
// image-based lighting.
var ambientColor = [3]float32{0.3, 0.3, 0.35}

// Renderer owns the pipelines, the baked environment on the GPU and the
// per-frame uniform buffers. One Renderer exists per window.
type Renderer struct {
	ctx *Context

	meshPipe *meshPipeline
	skyPipe  *skyPipeline

	frameBuffer *wgpu.Buffer
	frameGroup  *wgpu.BindGroup
	skyBuffer   *wgpu.Buffer
	skyGroup    *wgpu.BindGroup

	specular   *GPUTexture
	irradiance *GPUTexture
	brdfLUT    *GPUTexture
	envSampler *wgpu.Sampler
	lutSampler *wgpu.Sampler
	texSampler *wgpu.Sampler
	white      *GPUTexture

	specularMips int
	clearColor   wgpu.Color
}

// NewRenderer uploads the baked environment, builds both pipelines and
// allocates the frame and sky uniform buffers.
//
// Parameters:
//   - ctx: configured GPU context
//   - env: CPU-baked environment maps from shading.BakeEnvironment
//   - clearColor: RGB background used when the skybox is hidden
//
// Returns:
//   - *Renderer: ready renderer
//   - error: pipeline or resource creation failure
func NewRenderer(ctx *Context, env *shading.Environment, clearColor [3]float32) (*Renderer, error) {
	r := &Renderer{
		ctx:          ctx,
		specularMips: env.Specular.MipCount(),
		clearColor: wgpu.Color{
			R: float64(clearColor[0]),
			G: float64(clearColor[1]),
			B: float64(clearColor[2]),
			A: 1,
		},
	}

	var err error
	if r.meshPipe, err = newMeshPipeline(ctx); err != nil {
		r.Release()
		return nil, err
	}
	if r.skyPipe, err = newSkyPipeline(ctx); err != nil {
		r.Release()
		return nil, err
	}

	if r.specular, err = ctx.CreateCubemap("Specular Environment", env.Specular); err != nil {
		r.Release()
		return nil, err
	}
	if r.irradiance, err = ctx.CreateCubemap("Irradiance Environment", env.Irradiance); err != nil {
		r.Release()
		return nil, err
	}
	if r.brdfLUT, err = ctx.CreateLUT("BRDF LUT", env.BRDF); err != nil {
		r.Release()
		return nil, err
	}
	if r.envSampler, err = ctx.CreateSampler("Environment Sampler", wgpu.AddressModeClampToEdge); err != nil {
		r.Release()
		return nil, err
	}
	if r.lutSampler, err = ctx.CreateSampler("LUT Sampler", wgpu.AddressModeClampToEdge); err != nil {
		r.Release()
		return nil, err
	}
	if r.texSampler, err = ctx.CreateSampler("Material Sampler", wgpu.AddressModeRepeat); err != nil {
		r.Release()
		return nil, err
	}
	if r.white, err = ctx.CreateTexture2D("White Fallback", texture.White()); err != nil {
		r.Release()
		return nil, err
	}

	if r.frameBuffer, err = ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform Buffer",
		Size:  uint64((&shading.GPUFrameParams{}).Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		r.Release()
		return nil, fmt.Errorf("creating frame uniform buffer: %w", err)
	}
	if r.skyBuffer, err = ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sky Uniform Buffer",
		Size:  uint64((&shading.GPUSkyParams{}).Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		r.Release()
		return nil, fmt.Errorf("creating sky uniform buffer: %w", err)
	}

	if r.frameGroup, err = ctx.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: r.meshPipe.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.frameBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: r.envSampler},
			{Binding: 2, TextureView: r.specular.View},
			{Binding: 3, TextureView: r.irradiance.View},
			{Binding: 4, TextureView: r.brdfLUT.View},
			{Binding: 5, Sampler: r.lutSampler},
		},
	}); err != nil {
		r.Release()
		return nil, fmt.Errorf("creating frame bind group: %w", err)
	}
	if r.skyGroup, err = ctx.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Skybox Bind Group",
		Layout: r.skyPipe.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.skyBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: r.envSampler},
			{Binding: 2, TextureView: r.specular.View},
		},
	}); err != nil {
		r.Release()
		return nil, fmt.Errorf("creating skybox bind group: %w", err)
	}

	logging.Info("renderer ready", zap.Int("specularMips", r.specularMips))
	return r, nil
}

// UploadModel turns baked CPU geometry into GPU meshes with their material
// bind groups. The images slice is indexed like doc.Textures; nil entries
// fall back to the shared white texture.
//
// Parameters:
//   - build: world-space geometry from geometry.Build
//   - doc: source document providing materials
//   - images: decoded base color images, one per document texture, nil where decoding failed
//
// Returns:
//   - *Model: uploaded model, ready to draw
//   - error: buffer or texture creation failure
func (r *Renderer) UploadModel(build *geometry.BuildResult, doc *asset.Document, images []*texture.Image) (*Model, error) {
	model := &Model{}

	// Textures are shared between meshes that reference the same document
	// texture. The first mesh to use one owns it.
	uploaded := make(map[int]*GPUTexture, len(images))

	for i := range build.Meshes {
		data := &build.Meshes[i]
		mesh, err := r.ctx.createMeshBuffers(fmt.Sprintf("Mesh %d", i), data)
		if err != nil {
			model.Release()
			return nil, err
		}
		model.Meshes = append(model.Meshes, mesh)

		mat := asset.DefaultMaterial()
		if data.Material >= 0 && data.Material < len(doc.Materials) {
			mat = doc.Materials[data.Material]
		}
		mesh.Params = shading.GPUMaterialParams{
			BaseColor: mat.BaseColor,
			Metallic:  mat.Metallic,
			Roughness: shading.ClampRoughness(mat.Roughness),
		}

		mesh.Texture = r.white
		if mat.BaseTexture >= 0 && mat.BaseTexture < len(images) && images[mat.BaseTexture] != nil {
			if tex, ok := uploaded[mat.BaseTexture]; ok {
				mesh.Texture = tex
			} else {
				tex, err := r.ctx.CreateTexture2D(fmt.Sprintf("Texture %d", mat.BaseTexture), images[mat.BaseTexture])
				if err != nil {
					logging.Warn("texture upload failed, using fallback",
						zap.Int("texture", mat.BaseTexture), zap.Error(err))
				} else {
					uploaded[mat.BaseTexture] = tex
					mesh.Texture = tex
					mesh.OwnsTexture = true
				}
			}
		}

		if mesh.MaterialBuffer, err = r.ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Material %d Uniform Buffer", i),
			Size:  uint64(mesh.Params.Size()),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		}); err != nil {
			model.Release()
			return nil, fmt.Errorf("creating material buffer: %w", err)
		}

		if mesh.BindGroup, err = r.ctx.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Material %d Bind Group", i),
			Layout: r.meshPipe.materialLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: mesh.MaterialBuffer, Offset: 0, Size: wgpu.WholeSize},
				{Binding: 1, Sampler: r.texSampler},
				{Binding: 2, TextureView: mesh.Texture.View},
			},
		}); err != nil {
			model.Release()
			return nil, fmt.Errorf("creating material bind group: %w", err)
		}
	}

	logging.Info("model uploaded",
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("textures", len(uploaded)),
	)
	return model, nil
}

// RenderFrame draws one frame: the model's meshes, then the skybox when
// enabled. A nil model renders just the background.
//
// Parameters:
//   - cam: orbit camera providing view and projection
//   - state: live session toggles (shading model, skybox, toon parameters)
//   - model: uploaded model, may be nil
//
// Returns:
//   - error: surface acquisition or command submission failure
func (r *Renderer) RenderFrame(cam *camera.Camera, state *settings.State, model *Model) error {
	var view, proj, viewProj [16]float32
	cam.ViewMatrix(view[:])
	cam.ProjectionMatrix(proj[:], r.ctx.AspectRatio())
	common.Mul4(viewProj[:], proj[:], view[:])

	eye := cam.Position()
	sun := shading.SunDirection()
	frame := shading.GPUFrameParams{
		ViewProj:  viewProj,
		CameraPos: [4]float32{eye[0], eye[1], eye[2], 1},
		LightDir:  [4]float32{sun[0], sun[1], sun[2], state.Toon.LightIntensity},
		Ambient:   [4]float32{ambientColor[0], ambientColor[1], ambientColor[2], float32(r.specularMips)},
	}
	r.ctx.queue.WriteBuffer(r.frameBuffer, 0, frame.Marshal())

	if state.ShowSkybox {
		var invViewProj [16]float32
		if !common.Invert4(invViewProj[:], viewProj[:]) {
			common.Identity(invViewProj[:])
		}
		sky := shading.GPUSkyParams{
			InvViewProj: invViewProj,
			Exposure:    state.SkyboxExposure,
			LOD:         state.SkyboxLOD,
		}
		r.ctx.queue.WriteBuffer(r.skyBuffer, 0, sky.Marshal())
	}

	shadingModel := state.ShadingModel()
	if model != nil {
		for _, mesh := range model.Meshes {
			params := mesh.Params
			params.Model = shadingModel
			params.ApplyToon(state.Toon)
			r.ctx.queue.WriteBuffer(mesh.MaterialBuffer, 0, params.Marshal())
		}
	}

	surfaceTexture, err := r.ctx.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	surfaceView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("creating surface view: %w", err)
	}
	defer surfaceTexture.Release()
	defer surfaceView.Release()

	encoder, err := r.ctx.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       surfaceView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.ctx.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	if model != nil && len(model.Meshes) > 0 {
		pass.SetPipeline(r.meshPipe.pipeline)
		pass.SetBindGroup(0, r.frameGroup, nil)
		for _, mesh := range model.Meshes {
			pass.SetBindGroup(1, mesh.BindGroup, nil)
			pass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
			if mesh.HasIndices {
				pass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
				pass.DrawIndexed(mesh.IndexCount, 1, 0, 0, 0)
			} else {
				pass.Draw(mesh.VertexCount, 1, 0, 0)
			}
		}
	}

	if state.ShowSkybox {
		pass.SetPipeline(r.skyPipe.pipeline)
		pass.SetBindGroup(0, r.skyGroup, nil)
		pass.Draw(3, 1, 0, 0)
	}

	pass.End()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing command encoder: %w", err)
	}
	r.ctx.queue.Submit(commands)
	commands.Release()

	r.ctx.surface.Present()
	return nil
}

// Resize reconfigures the swapchain and depth buffer for a new framebuffer
// size. Zero sizes (minimized window) are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.ctx.Configure(width, height)
}

// Release frees every GPU resource the renderer owns. Models uploaded via
// UploadModel must be released separately before this.
func (r *Renderer) Release() {
	if r.skyGroup != nil {
		r.skyGroup.Release()
	}
	if r.frameGroup != nil {
		r.frameGroup.Release()
	}
	if r.skyBuffer != nil {
		r.skyBuffer.Release()
	}
	if r.frameBuffer != nil {
		r.frameBuffer.Release()
	}
	if r.white != nil {
		r.white.Release()
	}
	if r.texSampler != nil {
		r.texSampler.Release()
	}
	if r.lutSampler != nil {
		r.lutSampler.Release()
	}
	if r.envSampler != nil {
		r.envSampler.Release()
	}
	if r.brdfLUT != nil {
		r.brdfLUT.Release()
	}
	if r.irradiance != nil {
		r.irradiance.Release()
	}
	if r.specular != nil {
		r.specular.Release()
	}
	r.skyPipe.release()
	r.meshPipe.release()
}
