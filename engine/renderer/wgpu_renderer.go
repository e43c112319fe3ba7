package renderer

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vectra-gfx/vectra/common"
	"github.com/vectra-gfx/vectra/engine/scene"
)

// gridlineCount is the number of cells per side of the ground plane grid.
const gridlineCount = 10

var (
	groundSolidColor = [4]float32{80.0 / 255, 80.0 / 255, 80.0 / 255, 1}
	groundLineColor  = [4]float32{127.0 / 255, 127.0 / 255, 127.0 / 255, 1}
)

const sceneShaderSource = `
struct ViewportUniforms {
    size: vec2<f32>,
    _pad: vec2<f32>,
};

@group(0) @binding(0) var<uniform> viewport: ViewportUniforms;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let ndc = in.position / viewport.size * vec2<f32>(2.0, -2.0) + vec2<f32>(-1.0, 1.0);
    out.position = vec4<f32>(ndc, 0.0, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

const groundShaderSource = `
struct GroundUniforms {
    transform: mat4x4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> ground: GroundUniforms;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return ground.transform * vec4<f32>(position.x, 0.0, position.y, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return ground.color;
}
`

type wgpuRenderer struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	size        common.Vec2i

	scenePipeline      *wgpu.RenderPipeline
	groundPipeline     *wgpu.RenderPipeline
	groundLinePipeline *wgpu.RenderPipeline
	sceneBindLayout    *wgpu.BindGroupLayout
	groundBindLayout   *wgpu.BindGroupLayout

	groundSolidBuffer *wgpu.Buffer
	groundSolidCount  uint32
	groundLineBuffer  *wgpu.Buffer
	groundLineCount   uint32

	// Frame state for batched rendering across multiple draw calls.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Per-frame GPU resources released once the frame is submitted.
	frameBuffers    []*wgpu.Buffer
	frameBindGroups []*wgpu.BindGroup

	sceneBindGroup *wgpu.BindGroup

	forceFallback  bool
	pendingPresent *PresentMode
	pendingMSAA    *MSAASampleCount
}

var _ Renderer = &wgpuRenderer{}

func newWGPURenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...RendererBuilderOption) *wgpuRenderer {
	runtime.LockOSThread()
	r := &wgpuRenderer{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: MSAA4x,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pendingPresent != nil && *r.pendingPresent == PresentModeVSync {
		r.presentMode = wgpu.PresentModeFifo
	}
	if r.pendingMSAA != nil {
		r.sampleCount = *r.pendingMSAA
	}

	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	a, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallback,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		panic(err)
	}
	r.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	r.device = d
	r.queue = d.GetQueue()

	r.initGroundBuffers()

	return r
}

func (r *wgpuRenderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		r.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		r.presentMode = wgpu.PresentModeImmediate
	}
}

func (r *wgpuRenderer) ConfigureSurface(size common.Vec2i) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.size = size

	capabilities := r.surface.GetCapabilities(r.adapter)
	r.surfaceFormat = &capabilities.Formats[0]

	// CopySrc is required so ReadPixels can copy the frame back to the CPU.
	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		Format:      *r.surfaceFormat,
		Width:       uint32(size.X),
		Height:      uint32(size.Y),
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(r.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved result is
		// written to the swapchain view as the ResolveTarget.
		msaaTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(size.X),
				Height:             uint32(size.Y),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *r.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		r.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		r.msaaTextureView = nil
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(size.X),
			Height:             uint32(size.Y),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	r.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	r.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          r.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if r.scenePipeline == nil {
		if err := r.createPipelines(); err != nil {
			panic(err)
		}
	}
}

func (r *wgpuRenderer) BeginFrame(clearColor [4]float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// If a previous frame's surface texture is still held, avoid acquiring
	// another one. This prevents wgpu-native validation errors like "Surface
	// image is already acquired" when frames overlap.
	if r.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	r.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{
		R: float64(clearColor[0]),
		G: float64(clearColor[1]),
		B: float64(clearColor[2]),
		A: float64(clearColor[3]),
	}
	if r.sampleCount > 1 {
		r.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		r.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(r.renderPassDescriptor)

	r.frameEncoder = encoder
	r.framePass = pass
	r.frameSurface = surfaceTexture
	r.frameView = view
	r.sceneBindGroup = nil

	return nil
}

func (r *wgpuRenderer) SetViewport(viewport common.RectI) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return
	}

	r.framePass.SetViewport(
		float32(viewport.Origin.X), float32(viewport.Origin.Y),
		float32(viewport.Size.X), float32(viewport.Size.Y),
		0, 1,
	)
	r.framePass.SetScissorRect(
		uint32(viewport.Origin.X), uint32(viewport.Origin.Y),
		uint32(viewport.Size.X), uint32(viewport.Size.Y),
	)

	// Each viewport gets its own uniform buffer. Queue writes all execute
	// before the submitted commands, so reusing one buffer across viewports
	// would clobber earlier viewports' uniforms.
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Viewport Uniform Buffer",
		Size:  viewportUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		log.Printf("renderer: failed to create viewport uniform buffer: %v", err)
		return
	}
	r.queue.WriteBuffer(buf, 0, encodeViewportUniforms(viewport.Size))

	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Viewport Bind Group",
		Layout: r.sceneBindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		log.Printf("renderer: failed to create viewport bind group: %v", err)
		return
	}

	r.frameBuffers = append(r.frameBuffers, buf)
	r.frameBindGroups = append(r.frameBindGroups, bindGroup)
	r.sceneBindGroup = bindGroup
}

func (r *wgpuRenderer) DrawGround(transform common.Transform3D) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return
	}

	solid := r.groundBindGroup(transform, groundSolidColor)
	lines := r.groundBindGroup(transform, groundLineColor)
	if solid == nil || lines == nil {
		return
	}

	r.framePass.SetPipeline(r.groundPipeline)
	r.framePass.SetBindGroup(0, solid, nil)
	r.framePass.SetVertexBuffer(0, r.groundSolidBuffer, 0, wgpu.WholeSize)
	r.framePass.Draw(r.groundSolidCount, 1, 0, 0)

	r.framePass.SetPipeline(r.groundLinePipeline)
	r.framePass.SetBindGroup(0, lines, nil)
	r.framePass.SetVertexBuffer(0, r.groundLineBuffer, 0, wgpu.WholeSize)
	r.framePass.Draw(r.groundLineCount, 1, 0, 0)
}

func (r *wgpuRenderer) DrawScene(built *scene.BuiltScene) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil || r.sceneBindGroup == nil || len(built.Objects) == 0 {
		return
	}

	type drawRange struct {
		first, count uint32
	}

	total := 0
	for _, obj := range built.Objects {
		if len(obj.Vertices) < 2 {
			continue
		}
		total += len(obj.Vertices)
		if obj.Closed {
			total++
		}
	}
	if total == 0 {
		return
	}

	data := make([]byte, total*sceneVertexStride)
	ranges := make([]drawRange, 0, len(built.Objects))
	offset := 0
	vertex := uint32(0)
	for _, obj := range built.Objects {
		if len(obj.Vertices) < 2 {
			continue
		}
		color := obj.Color.ToFloats()
		first := vertex
		for _, v := range obj.Vertices {
			encodeSceneVertex(data, offset, v, color)
			offset += sceneVertexStride
			vertex++
		}
		if obj.Closed {
			encodeSceneVertex(data, offset, obj.Vertices[0], color)
			offset += sceneVertexStride
			vertex++
		}
		ranges = append(ranges, drawRange{first: first, count: vertex - first})
	}

	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Scene Vertex Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		log.Printf("renderer: failed to create scene vertex buffer: %v", err)
		return
	}
	r.queue.WriteBuffer(buf, 0, data)
	r.frameBuffers = append(r.frameBuffers, buf)

	r.framePass.SetPipeline(r.scenePipeline)
	r.framePass.SetBindGroup(0, r.sceneBindGroup, nil)
	r.framePass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
	// One draw per contour: each draw starts a fresh line strip.
	for _, dr := range ranges {
		r.framePass.Draw(dr.count, 1, dr.first, 0)
	}
}

func (r *wgpuRenderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return
	}

	r.framePass.End()

	commandBuffer, err := r.frameEncoder.Finish(nil)
	if err == nil {
		r.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}

	r.frameEncoder.Release()
	r.frameEncoder = nil
	r.framePass = nil
	r.sceneBindGroup = nil

	for _, bg := range r.frameBindGroups {
		bg.Release()
	}
	r.frameBindGroups = r.frameBindGroups[:0]
	for _, buf := range r.frameBuffers {
		buf.Release()
	}
	r.frameBuffers = r.frameBuffers[:0]
}

func (r *wgpuRenderer) ReadPixels() ([]byte, int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameSurface == nil {
		return nil, 0, 0, fmt.Errorf("no frame surface held; ReadPixels is only valid between EndFrame and Present")
	}

	width := r.size.X
	height := r.size.Y
	// Buffer copies require BytesPerRow aligned to 256.
	paddedRow := (width*4 + 255) &^ 255

	readback, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Buffer",
		Size:  uint64(paddedRow * height),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer readback.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create readback encoder: %w", err)
	}
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  r.frameSurface,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(paddedRow),
				RowsPerImage: uint32(height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode readback copy: %w", err)
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to finish readback encoder: %w", err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()

	var mapErr error
	done := false
	err = readback.MapAsync(wgpu.MapModeRead, 0, uint64(paddedRow*height), func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("readback map failed with status %v", status)
		}
		done = true
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to map readback buffer: %w", err)
	}
	for !done {
		r.device.Poll(true, nil)
	}
	if mapErr != nil {
		return nil, 0, 0, mapErr
	}
	defer readback.Unmap()

	mapped := readback.GetMappedRange(0, uint(paddedRow*height))

	// Strip the row padding and swizzle BGRA surfaces to RGBA.
	bgra := *r.surfaceFormat == wgpu.TextureFormatBGRA8Unorm || *r.surfaceFormat == wgpu.TextureFormatBGRA8UnormSrgb
	pixels := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		row := mapped[y*paddedRow : y*paddedRow+width*4]
		out := pixels[y*width*4 : (y+1)*width*4]
		copy(out, row)
		if bgra {
			for x := 0; x < width*4; x += 4 {
				out[x], out[x+2] = out[x+2], out[x]
			}
		}
	}

	return pixels, width, height, nil
}

func (r *wgpuRenderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameSurface == nil {
		return
	}

	r.surface.Present()

	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	r.frameSurface.Release()
	r.frameSurface = nil
}

func (r *wgpuRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.groundSolidBuffer != nil {
		r.groundSolidBuffer.Release()
	}
	if r.groundLineBuffer != nil {
		r.groundLineBuffer.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}
}

// groundBindGroup creates a per-draw uniform buffer and bind group for the
// ground pipeline. Both are released when the frame is submitted.
func (r *wgpuRenderer) groundBindGroup(transform common.Transform3D, color [4]float32) *wgpu.BindGroup {
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Ground Uniform Buffer",
		Size:  groundUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		log.Printf("renderer: failed to create ground uniform buffer: %v", err)
		return nil
	}
	r.queue.WriteBuffer(buf, 0, encodeGroundUniforms(transform, color))

	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Ground Bind Group",
		Layout: r.groundBindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		log.Printf("renderer: failed to create ground bind group: %v", err)
		buf.Release()
		return nil
	}

	r.frameBuffers = append(r.frameBuffers, buf)
	r.frameBindGroups = append(r.frameBindGroups, bindGroup)
	return bindGroup
}

// initGroundBuffers uploads the static ground plane geometry: a unit square
// as two triangles, and a line list with gridlineCount cells per side.
func (r *wgpuRenderer) initGroundBuffers() {
	solid := make([]byte, 6*groundVertexStride)
	quad := [6][2]float32{
		{0, 0}, {1, 0}, {1, 1},
		{0, 0}, {1, 1}, {0, 1},
	}
	for i, v := range quad {
		encodeGroundVertex(solid, i*groundVertexStride, v[0], v[1])
	}

	lineVerts := (gridlineCount + 1) * 4
	lines := make([]byte, lineVerts*groundVertexStride)
	offset := 0
	for i := 0; i <= gridlineCount; i++ {
		t := float32(i) / gridlineCount
		encodeGroundVertex(lines, offset, t, 0)
		encodeGroundVertex(lines, offset+groundVertexStride, t, 1)
		encodeGroundVertex(lines, offset+2*groundVertexStride, 0, t)
		encodeGroundVertex(lines, offset+3*groundVertexStride, 1, t)
		offset += 4 * groundVertexStride
	}

	solidBuf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Ground Solid Vertex Buffer",
		Size:  uint64(len(solid)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	r.queue.WriteBuffer(solidBuf, 0, solid)
	r.groundSolidBuffer = solidBuf
	r.groundSolidCount = 6

	lineBuf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Ground Line Vertex Buffer",
		Size:  uint64(len(lines)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	r.queue.WriteBuffer(lineBuf, 0, lines)
	r.groundLineBuffer = lineBuf
	r.groundLineCount = uint32(lineVerts)
}

// createPipelines builds the scene and ground render pipelines against the
// configured surface format.
func (r *wgpuRenderer) createPipelines() error {
	sceneModule, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Scene Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sceneShaderSource,
		},
	})
	if err != nil {
		return err
	}
	groundModule, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Ground Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: groundShaderSource,
		},
	})
	if err != nil {
		return err
	}

	uniformEntry := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		},
	}

	r.sceneBindLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Scene Bind Group Layout",
		Entries: uniformEntry,
	})
	if err != nil {
		return err
	}
	r.groundBindLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Ground Bind Group Layout",
		Entries: uniformEntry,
	})
	if err != nil {
		return err
	}

	sceneLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Scene Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.sceneBindLayout},
	})
	if err != nil {
		return err
	}
	groundLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Ground Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.groundBindLayout},
	})
	if err != nil {
		return err
	}

	sceneVertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: sceneVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		},
	}
	groundVertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: groundVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		},
	}

	// Draw order is painter's order (ground first, then contours), so depth
	// testing stays off; the pipelines still declare the pass depth format.
	depthState := &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: false,
		DepthCompare:      wgpu.CompareFunctionAlways,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
	colorTarget := []wgpu.ColorTargetState{
		{
			Format:    *r.surfaceFormat,
			Blend:     &wgpu.BlendStateReplace,
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}
	multisample := wgpu.MultisampleState{
		Count: uint32(r.sampleCount),
		Mask:  0xFFFFFFFF,
	}

	r.scenePipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Scene Render Pipeline",
		Layout: sceneLayout,
		Vertex: wgpu.VertexState{
			Module:     sceneModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{sceneVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     sceneModule,
			EntryPoint: "fs_main",
			Targets:    colorTarget,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample:  multisample,
		DepthStencil: depthState,
	})
	if err != nil {
		return err
	}

	r.groundPipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Ground Render Pipeline",
		Layout: groundLayout,
		Vertex: wgpu.VertexState{
			Module:     groundModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{groundVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     groundModule,
			EntryPoint: "fs_main",
			Targets:    colorTarget,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample:  multisample,
		DepthStencil: depthState,
	})
	if err != nil {
		return err
	}

	r.groundLinePipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Ground Line Render Pipeline",
		Layout: groundLayout,
		Vertex: wgpu.VertexState{
			Module:     groundModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{groundVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     groundModule,
			EntryPoint: "fs_main",
			Targets:    colorTarget,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample:  multisample,
		DepthStencil: depthState,
	})
	return err
}
