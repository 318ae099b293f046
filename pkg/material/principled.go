package material

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
)

const minAlpha = 1e-3

// Principled is a dielectric/metal surface with a Lambert diffuse lobe and a GGX
// microfacet specular lobe
type Principled struct {
	BaseColor ColorSource
	Roughness float64 // Perceptual roughness in [0,1]; alpha = roughness^2
	Metallic  float64 // 0 = dielectric, 1 = metal tinted by BaseColor
	Specular  float64 // Dielectric reflectance scale; 0.5 gives F0 = 0.04

	specularWeight float64 // Probability of sampling the specular lobe
}

// NewPrincipledWithSource creates a principled material with any color source
func NewPrincipledWithSource(baseColor ColorSource, roughness, metallic float64) *Principled {
	p := &Principled{
		BaseColor: baseColor,
		Roughness: math.Max(0, math.Min(1, roughness)),
		Metallic:  math.Max(0, math.Min(1, metallic)),
		Specular:  0.5,
	}
	p.specularWeight = p.lobeWeight(representativeColor(baseColor))
	return p
}

func (p *Principled) alpha() float64 {
	return math.Max(p.Roughness*p.Roughness, minAlpha)
}

// f0 returns the normal-incidence reflectance for a base color
func (p *Principled) f0(base core.Vec3) core.Vec3 {
	d := 0.08 * p.Specular
	dielectric := core.NewVec3(d, d, d)
	return dielectric.Multiply(1 - p.Metallic).Add(base.Multiply(p.Metallic))
}

// lobeWeight splits samples between the lobes by their rough albedo, kept in [0.1, 0.9]
func (p *Principled) lobeWeight(base core.Vec3) float64 {
	spec := p.f0(base).Luminance()
	diff := base.Multiply(1 - p.Metallic).Luminance()
	if spec+diff <= 0 {
		return 0.5
	}
	return math.Max(0.1, math.Min(0.9, spec/(spec+diff)))
}

// Scatter samples either the diffuse or the specular lobe
func (p *Principled) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	wo := rayIn.Direction.Normalize().Negate()
	if wo.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	var wi core.Vec3
	if sampler.Get1D() < p.specularWeight {
		h := sampleGGX(hit.Normal, p.alpha(), sampler.Get2D())
		wi = wo.Negate().Reflect(h)
	} else {
		wi = core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	}
	if wi.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	pdf, _ := p.PDF(rayIn.Direction, wi, hit.Normal)
	if pdf <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(hit.Point, wi),
		Attenuation: p.EvaluateBRDF(rayIn.Direction, wi, &hit),
		PDF:         pdf,
	}, true
}

// EvaluateBRDF returns diffuse + specular reflectance for the direction pair
func (p *Principled) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *SurfaceInteraction) core.Vec3 {
	wo := incomingDir.Normalize().Negate()
	wi := outgoingDir.Normalize()
	n := hit.Normal

	nDotL := wi.Dot(n)
	nDotV := wo.Dot(n)
	if nDotL <= 0 || nDotV <= 0 {
		return core.Vec3{}
	}

	h := wo.Add(wi).Normalize()
	nDotH := math.Max(n.Dot(h), 0)
	vDotH := math.Max(wo.Dot(h), 0)

	base := p.BaseColor.Evaluate(hit.UV, hit.Point)
	f := schlickFresnel(p.f0(base), vDotH)
	alpha := p.alpha()
	specular := f.Multiply(ggxD(nDotH, alpha) * smithG(nDotV, nDotL, alpha) / (4 * nDotV * nDotL))

	one := core.NewVec3(1, 1, 1)
	diffuse := base.Multiply((1 - p.Metallic) / math.Pi).MultiplyVec(one.Subtract(f))

	return diffuse.Add(specular)
}

// PDF returns the mixture density of both lobes
func (p *Principled) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	wo := incomingDir.Normalize().Negate()
	wi := outgoingDir.Normalize()
	if wi.Dot(normal) <= 0 || wo.Dot(normal) <= 0 {
		return 0, false
	}

	h := wo.Add(wi).Normalize()
	nDotH := math.Max(normal.Dot(h), 0)
	vDotH := wo.Dot(h)

	specPDF := 0.0
	if vDotH > 0 {
		specPDF = ggxD(nDotH, p.alpha()) * nDotH / (4 * vDotH)
	}
	diffPDF := core.CosineHemispherePDF(normal, wi)

	return p.specularWeight*specPDF + (1-p.specularWeight)*diffPDF, false
}

// ggxD is the Trowbridge-Reitz normal distribution
func ggxD(nDotH, alpha float64) float64 {
	a2 := alpha * alpha
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// smithG is the separable Smith masking-shadowing term for GGX
func smithG(nDotV, nDotL, alpha float64) float64 {
	return smithG1(nDotV, alpha) * smithG1(nDotL, alpha)
}

func smithG1(nDotX, alpha float64) float64 {
	a2 := alpha * alpha
	return 2 * nDotX / (nDotX + math.Sqrt(a2+(1-a2)*nDotX*nDotX))
}

func schlickFresnel(f0 core.Vec3, cosTheta float64) core.Vec3 {
	m := math.Pow(1-math.Max(0, math.Min(1, cosTheta)), 5)
	one := core.NewVec3(1, 1, 1)
	return f0.Add(one.Subtract(f0).Multiply(m))
}

// sampleGGX samples a half vector proportional to D(h)·cos(θh)
func sampleGGX(normal core.Vec3, alpha float64, u core.Vec2) core.Vec3 {
	a2 := alpha * alpha
	cosTheta := math.Sqrt((1 - u.X) / (1 + (a2-1)*u.X))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	tangent, bitangent := core.OrthonormalBasis(normal)
	return tangent.Multiply(sinTheta * math.Cos(phi)).
		Add(bitangent.Multiply(sinTheta * math.Sin(phi))).
		Add(normal.Multiply(cosTheta)).
		Normalize()
}
