package shading

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"
)

// FaceCount is the number of faces in a cubemap, ordered +X -X +Y -Y +Z -Z
// to match the GPU's array layer order.
const FaceCount = 6

// sunDirection is the light direction baked into the procedural sky,
// matching the analytic light the mesh shaders use.
var sunDirection = normalize([3]float32{0.5, 1, 0.3})

// SunDirection returns the normalized light direction baked into the
// procedural sky, so mesh lighting stays consistent with the environment.
func SunDirection() [3]float32 {
	return sunDirection
}

// Cubemap is a CPU-resident RGBA8 cubemap with a full mip chain. Mip m has
// edge length Size>>m; Mips[m][face] holds the tightly packed pixels.
type Cubemap struct {
	Size int
	Mips [][FaceCount][]byte
}

// MipCount returns the number of mip levels in the chain.
func (c *Cubemap) MipCount() int { return len(c.Mips) }

// LUT is the split-sum BRDF lookup table: scale in R, bias in G, RGBA8.
// X is N·V, Y is roughness.
type LUT struct {
	Size   int
	Pixels []byte
}

// Environment bundles everything the image-based lighting path samples:
// a roughness-prefiltered specular cubemap (mip = roughness), a diffuse
// irradiance cubemap and the BRDF integration LUT.
type Environment struct {
	Specular   *Cubemap
	Irradiance *Cubemap
	BRDF       *LUT
}

// SkyColor evaluates the procedural sky for a direction: a ground-to-zenith
// gradient with a sun disk and bloom around the light direction.
func SkyColor(dir [3]float32) [3]float32 {
	d := normalize(dir)

	zenith := [3]float32{0.18, 0.32, 0.62}
	horizon := [3]float32{0.72, 0.78, 0.88}
	ground := [3]float32{0.22, 0.2, 0.19}

	var sky [3]float32
	if d[1] >= 0 {
		sky = mix3(horizon, zenith, math32.Pow(d[1], 0.55))
	} else {
		sky = mix3(horizon, ground, math32.Pow(-d[1], 0.5))
	}

	// Sun disk with a soft bloom halo.
	s := dot(d, sunDirection)
	if s > 0 {
		bloom := math32.Pow(s, 32) * 0.35
		disk := Smoothstep(0.9995, 0.9999, s) * 4
		sun := [3]float32{1, 0.95, 0.85}
		sky = add3(sky, scale3(sun, bloom+disk))
	}

	return sky
}

// BakeEnvironment bakes the full IBL set on the CPU. Faces are processed in
// parallel on a worker pool. size is the specular base mip edge length and
// must be a power of two; mips levels are prefiltered with increasing
// roughness so shaders can select blur via the LOD.
//
// Parameters:
//   - size: specular cubemap base size
//   - mips: specular mip count (clamped to the chain size)
//   - workers: worker pool size, minimum 1
//
// Returns:
//   - *Environment: baked cubemaps and LUT
func BakeEnvironment(size, mips, workers int) *Environment {
	if workers < 1 {
		workers = 1
	}
	maxMips := 1
	for s := size; s > 1; s >>= 1 {
		maxMips++
	}
	if mips < 1 {
		mips = 1
	}
	if mips > maxMips {
		mips = maxMips
	}

	// Queue size of 512 covers all face and LUT row tasks without blocking.
	pool := worker.NewDynamicWorkerPool(workers, 512, 1*time.Second)

	env := &Environment{
		Specular:   &Cubemap{Size: size, Mips: make([][FaceCount][]byte, mips)},
		Irradiance: &Cubemap{Size: irradianceSize, Mips: make([][FaceCount][]byte, 1)},
	}

	base := bakeSkyFaces(pool, size)
	env.Specular.Mips[0] = base

	var wg sync.WaitGroup
	taskID := 0

	for mip := 1; mip < mips; mip++ {
		mipSize := size >> mip
		if mipSize < 1 {
			mipSize = 1
		}
		roughness := float32(mip) / float32(mips-1)
		for face := 0; face < FaceCount; face++ {
			m, f := mip, face
			wg.Add(1)
			taskID++
			pool.SubmitTask(worker.Task{
				ID: taskID,
				Do: func() (any, error) {
					defer wg.Done()
					env.Specular.Mips[m][f] = prefilterFace(env.Specular, f, mipSize, roughness)
					return nil, nil
				},
			})
		}
	}
	wg.Wait()

	for face := 0; face < FaceCount; face++ {
		f := face
		wg.Add(1)
		taskID++
		pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				env.Irradiance.Mips[0][f] = irradianceFace(env.Specular, f, irradianceSize)
				return nil, nil
			},
		})
	}
	wg.Wait()

	env.BRDF = BakeBRDFLUT(brdfLUTSize, brdfSamples, pool)
	return env
}

const (
	irradianceSize = 16
	brdfLUTSize    = 64
	brdfSamples    = 256
	prefilterTaps  = 64
)

// bakeSkyFaces renders the procedural sky into all six base-mip faces.
func bakeSkyFaces(pool worker.DynamicWorkerPool, size int) [FaceCount][]byte {
	var faces [FaceCount][]byte
	var wg sync.WaitGroup
	for face := 0; face < FaceCount; face++ {
		f := face
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: f,
			Do: func() (any, error) {
				defer wg.Done()
				px := make([]byte, size*size*4)
				for y := 0; y < size; y++ {
					for x := 0; x < size; x++ {
						dir := cubeDirection(f, texel(x, size), texel(y, size))
						writeRGB(px, (y*size+x)*4, SkyColor(dir))
					}
				}
				faces[f] = px
				return nil, nil
			},
		})
	}
	wg.Wait()
	return faces
}

// prefilterFace convolves the base mip with GGX importance sampling at the
// given roughness.
func prefilterFace(src *Cubemap, face, size int, roughness float32) []byte {
	px := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := cubeDirection(face, texel(x, size), texel(y, size))

			var sum [3]float32
			var weight float32
			for i := uint32(0); i < prefilterTaps; i++ {
				u, v := Hammersley(i, prefilterTaps)
				h := ImportanceSampleGGX(u, v, n, roughness)
				l := reflect(n, h)
				nDotL := dot(n, l)
				if nDotL <= 0 {
					continue
				}
				sum = add3(sum, scale3(src.sample(l), nDotL))
				weight += nDotL
			}
			if weight > 0 {
				sum = scale3(sum, 1/weight)
			} else {
				sum = src.sample(n)
			}
			writeRGB(px, (y*size+x)*4, sum)
		}
	}
	return px
}

// irradianceFace integrates cosine-weighted hemisphere lighting per texel.
func irradianceFace(src *Cubemap, face, size int) []byte {
	const thetaSteps, phiSteps = 8, 16

	px := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := cubeDirection(face, texel(x, size), texel(y, size))

			up := [3]float32{0, 1, 0}
			if math32.Abs(n[1]) > 0.999 {
				up = [3]float32{1, 0, 0}
			}
			right := normalize(cross(up, n))
			up = cross(n, right)

			var sum [3]float32
			var count float32
			for t := 0; t < thetaSteps; t++ {
				theta := (float32(t) + 0.5) / thetaSteps * (math32.Pi / 2)
				for p := 0; p < phiSteps; p++ {
					phi := (float32(p) + 0.5) / phiSteps * (2 * math32.Pi)
					st, ct := math32.Sin(theta), math32.Cos(theta)
					sp, cp := math32.Sin(phi), math32.Cos(phi)

					dir := add3(add3(scale3(right, st*cp), scale3(up, st*sp)), scale3(n, ct))
					sum = add3(sum, scale3(src.sample(dir), ct*st))
					count++
				}
			}
			sum = scale3(sum, math32.Pi/count)
			writeRGB(px, (y*size+x)*4, sum)
		}
	}
	return px
}

// BakeBRDFLUT integrates the split-sum BRDF over the N·V / roughness grid.
// pool may be nil to run serially.
func BakeBRDFLUT(size int, samples uint32, pool worker.DynamicWorkerPool) *LUT {
	lut := &LUT{Size: size, Pixels: make([]byte, size*size*4)}

	row := func(y int) {
		roughness := (float32(y) + 0.5) / float32(size)
		for x := 0; x < size; x++ {
			nDotV := (float32(x) + 0.5) / float32(size)
			s, b := IntegrateBRDF(nDotV, roughness, samples)
			o := (y*size + x) * 4
			lut.Pixels[o] = quantize(s)
			lut.Pixels[o+1] = quantize(b)
			lut.Pixels[o+3] = 0xFF
		}
	}

	if pool == nil {
		for y := 0; y < size; y++ {
			row(y)
		}
		return lut
	}

	var wg sync.WaitGroup
	for y := 0; y < size; y++ {
		yy := y
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: yy,
			Do: func() (any, error) {
				defer wg.Done()
				row(yy)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return lut
}

// sample does a nearest lookup of the base mip along a direction.
func (c *Cubemap) sample(dir [3]float32) [3]float32 {
	face, u, v := directionToFace(dir)
	size := c.Size
	x := int((u*0.5 + 0.5) * float32(size))
	y := int((v*0.5 + 0.5) * float32(size))
	if x < 0 {
		x = 0
	}
	if x >= size {
		x = size - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= size {
		y = size - 1
	}
	o := (y*size + x) * 4
	px := c.Mips[0][face]
	return [3]float32{
		float32(px[o]) / 255,
		float32(px[o+1]) / 255,
		float32(px[o+2]) / 255,
	}
}

// texel maps a pixel index to the [-1, 1] face coordinate of its center.
func texel(i, size int) float32 {
	return (float32(i)+0.5)/float32(size)*2 - 1
}

// cubeDirection maps face-local (u, v) in [-1, 1] to a world direction,
// following the standard cubemap face conventions.
func cubeDirection(face int, u, v float32) [3]float32 {
	switch face {
	case 0: // +X
		return normalize([3]float32{1, -v, -u})
	case 1: // -X
		return normalize([3]float32{-1, -v, u})
	case 2: // +Y
		return normalize([3]float32{u, 1, v})
	case 3: // -Y
		return normalize([3]float32{u, -1, -v})
	case 4: // +Z
		return normalize([3]float32{u, -v, 1})
	default: // -Z
		return normalize([3]float32{-u, -v, -1})
	}
}

// directionToFace inverts cubeDirection: the dominant axis picks the face,
// the remaining components become (u, v).
func directionToFace(dir [3]float32) (face int, u, v float32) {
	ax, ay, az := math32.Abs(dir[0]), math32.Abs(dir[1]), math32.Abs(dir[2])

	switch {
	case ax >= ay && ax >= az:
		if dir[0] > 0 {
			return 0, -dir[2] / ax, -dir[1] / ax
		}
		return 1, dir[2] / ax, -dir[1] / ax
	case ay >= ax && ay >= az:
		if dir[1] > 0 {
			return 2, dir[0] / ay, dir[2] / ay
		}
		return 3, dir[0] / ay, -dir[2] / ay
	default:
		if dir[2] > 0 {
			return 4, dir[0] / az, -dir[1] / az
		}
		return 5, -dir[0] / az, -dir[1] / az
	}
}

func writeRGB(px []byte, o int, c [3]float32) {
	px[o] = quantize(c[0])
	px[o+1] = quantize(c[1])
	px[o+2] = quantize(c[2])
	px[o+3] = 0xFF
}

func quantize(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
