// Package shading holds the shading models shared by the GPU pipelines and
// the CPU environment baker: PBR BRDF terms, tone mapping, color transfer
// and the toon ramp. The WGSL shaders implement the same math; the Go
// versions are the reference the baker and the tests run against.
package shading

import "github.com/chewxy/math32"

// MinRoughness is the lower clamp applied to material roughness before any
// specular math. Perfectly smooth surfaces alias badly and produce infinite
// highlights in the GGX distribution.
const MinRoughness = 0.04

// ClampRoughness applies the viewer's roughness floor.
func ClampRoughness(r float32) float32 {
	if r < MinRoughness {
		return MinRoughness
	}
	if r > 1 {
		return 1
	}
	return r
}

// DistributionGGX evaluates the GGX normal distribution function.
//
// Parameters:
//   - nDotH: cosine between surface normal and half vector, clamped >= 0
//   - roughness: perceptual roughness (clamped internally)
//
// Returns:
//   - float32: microfacet distribution density
func DistributionGGX(nDotH, roughness float32) float32 {
	a := ClampRoughness(roughness)
	a2 := a * a * a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (math32.Pi * d * d)
}

// GeometrySchlickGGX is the Schlick-GGX single-direction visibility term
// for analytic lights.
func GeometrySchlickGGX(nDotV, roughness float32) float32 {
	r := ClampRoughness(roughness) + 1
	k := r * r / 8
	return nDotV / (nDotV*(1-k) + k)
}

// GeometrySmith combines the view and light visibility terms.
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	return GeometrySchlickGGX(nDotV, roughness) * GeometrySchlickGGX(nDotL, roughness)
}

// geometrySchlickGGXIBL is the visibility term with the remapping used for
// environment prefiltering instead of analytic lights.
func geometrySchlickGGXIBL(nDotV, roughness float32) float32 {
	a := ClampRoughness(roughness)
	k := a * a / 2
	return nDotV / (nDotV*(1-k) + k)
}

// FresnelSchlick evaluates Schlick's Fresnel approximation per channel.
//
// Parameters:
//   - cosTheta: cosine of the view angle, clamped to [0, 1]
//   - f0: reflectance at normal incidence
//
// Returns:
//   - [3]float32: reflected fraction per channel
func FresnelSchlick(cosTheta float32, f0 [3]float32) [3]float32 {
	c := saturate(1 - cosTheta)
	f := c * c * c * c * c
	return [3]float32{
		f0[0] + (1-f0[0])*f,
		f0[1] + (1-f0[1])*f,
		f0[2] + (1-f0[2])*f,
	}
}

// ACESFilm applies the ACES filmic tone curve to one linear channel. The
// output is clamped to [0, 1].
func ACESFilm(x float32) float32 {
	v := (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LinearToSRGB converts one linear channel to the sRGB transfer curve.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math32.Pow(c, 1.0/2.4) - 0.055
}

// SRGBToLinear converts one sRGB-encoded channel back to linear.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

// Smoothstep is the Hermite interpolation of x between lo and hi.
func Smoothstep(lo, hi, x float32) float32 {
	if hi <= lo {
		if x < lo {
			return 0
		}
		return 1
	}
	t := (x - lo) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// ToonRamp maps a diffuse cosine onto the stylized two-band lighting curve.
// toony narrows the transition band around 0.5; strength sets how dark the
// shaded band gets. Fully lit returns 1, fully shaded returns 1-strength.
//
// Parameters:
//   - nDotL: cosine between normal and light direction
//   - toony: band sharpness in [0, 1], 1 is a hard edge
//   - strength: shade darkening in [0, 1]
//
// Returns:
//   - float32: light multiplier in [1-strength, 1]
func ToonRamp(nDotL, toony, strength float32) float32 {
	half := (1 - toony) * 0.5
	ramp := Smoothstep(0.5-half, 0.5+half, nDotL)
	return (1 - strength) + strength*ramp
}

// ToonSpecular evaluates the stylized highlight: the GGX lobe collapsed
// into a hard-edged spot by a soft threshold on its intensity. The caller
// masks the result by the diffuse ramp.
//
// Parameters:
//   - nDotL: cosine between normal and light direction
//   - nDotV: cosine between normal and view direction, > 0
//   - nDotH: cosine between normal and half vector
//   - hDotV: cosine between half vector and view direction
//   - roughness: perceptual roughness (clamped internally)
//   - specIntensity: threshold scale, 0 disables the highlight
//
// Returns:
//   - [3]float32: specular contribution per channel
func ToonSpecular(nDotL, nDotV, nDotH, hDotV, roughness, specIntensity float32) [3]float32 {
	nDotL = math32.Max(nDotL, 0)
	d := DistributionGGX(nDotH, roughness)
	g := GeometrySmith(nDotV, nDotL, roughness)
	ggx := (d * g) / (4*nDotV*nDotL + 0.0001)
	spot := Smoothstep(0.3, 0.6, ggx*specIntensity)
	return scale3(FresnelSchlick(hDotV, [3]float32{0.04, 0.04, 0.04}), spot)
}

// ToonGrade applies the mild saturation and contrast push that finishes the
// toon model: channels move 15% away from luma, then a gentle power curve.
func ToonGrade(c [3]float32) [3]float32 {
	luma := 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
	g := mix3([3]float32{luma, luma, luma}, c, 1.15)
	for i := range g {
		g[i] = math32.Pow(math32.Max(g[i], 0), 1.05)
	}
	return g
}

// Hammersley returns the i-th point of an n-point low discrepancy sequence
// on the unit square, used for quasi-random BRDF sampling.
func Hammersley(i, n uint32) (float32, float32) {
	bits := i
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(i) / float32(n), float32(bits) * 2.3283064365386963e-10
}

// ImportanceSampleGGX generates a half vector around n following the GGX
// distribution for the given roughness.
//
// Parameters:
//   - u, v: sample point on the unit square
//   - n: surface normal (unit length)
//   - roughness: perceptual roughness
//
// Returns:
//   - [3]float32: world-space half vector (unit length)
func ImportanceSampleGGX(u, v float32, n [3]float32, roughness float32) [3]float32 {
	a := ClampRoughness(roughness)
	a = a * a

	phi := 2 * math32.Pi * u
	cosTheta := math32.Sqrt((1 - v) / (1 + (a*a-1)*v))
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)

	hx := math32.Cos(phi) * sinTheta
	hy := math32.Sin(phi) * sinTheta
	hz := cosTheta

	// Build an orthonormal basis around n.
	up := [3]float32{0, 0, 1}
	if math32.Abs(n[2]) > 0.999 {
		up = [3]float32{1, 0, 0}
	}
	tangent := normalize(cross(up, n))
	bitangent := cross(n, tangent)

	return normalize([3]float32{
		tangent[0]*hx + bitangent[0]*hy + n[0]*hz,
		tangent[1]*hx + bitangent[1]*hy + n[1]*hz,
		tangent[2]*hx + bitangent[2]*hy + n[2]*hz,
	})
}

// IntegrateBRDF computes the split-sum BRDF lookup value for a view angle
// and roughness: the scale and bias applied to F0 by the environment.
func IntegrateBRDF(nDotV, roughness float32, samples uint32) (scale, bias float32) {
	if nDotV < 1e-4 {
		nDotV = 1e-4
	}
	view := [3]float32{math32.Sqrt(1 - nDotV*nDotV), 0, nDotV}
	n := [3]float32{0, 0, 1}

	for i := uint32(0); i < samples; i++ {
		u, v := Hammersley(i, samples)
		h := ImportanceSampleGGX(u, v, n, roughness)
		l := reflect(view, h)

		nDotL := l[2]
		if nDotL <= 0 {
			continue
		}
		nDotH := h[2]
		vDotH := dot(view, h)
		if nDotH < 0 {
			nDotH = 0
		}
		if vDotH < 0 {
			vDotH = 0
		}

		g := geometrySchlickGGXIBL(nDotV, roughness) * geometrySchlickGGXIBL(nDotL, roughness)
		gVis := g * vDotH / (nDotH * nDotV)
		fc := math32.Pow(1-vDotH, 5)

		scale += (1 - fc) * gVis
		bias += fc * gVis
	}

	inv := 1 / float32(samples)
	return scale * inv, bias * inv
}

func saturate(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(dot(v, v))
	if l == 0 {
		return [3]float32{0, 0, 1}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func reflect(v, n [3]float32) [3]float32 {
	d := 2 * dot(v, n)
	return [3]float32{d*n[0] - v[0], d*n[1] - v[1], d*n[2] - v[2]}
}

func scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

func add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func mix3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
