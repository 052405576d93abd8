package material

// Tree is the BRDF built for one surface hit:
//
//	root       = LinearBlend(reflectivity, metalBlend, diffuse)
//	metalBlend = LinearBlend(metalness, metal, dielectric)
//	dielectric = BlinnPhong(shininess, fresnel, refraction = diffuse)
//	metal      = BlinnPhongMetal(color, shininess, fresnel)
//
// The nodes live inside the Tree value so a path can reuse one Tree for every
// bounce. The BRDF returned by Reset is only valid until the next Reset.
type Tree struct {
	diffuse    Diffuse
	dielectric BlinnPhong
	metal      BlinnPhongMetal
	metalBlend LinearBlend
	root       LinearBlend
}

// Reset rebuilds the tree for p and returns its root
func (t *Tree) Reset(p *Params) BRDF {
	t.diffuse = Diffuse{Albedo: p.Color}
	t.dielectric = BlinnPhong{Shininess: p.Shininess, R0: p.Fresnel, Refraction: &t.diffuse}
	t.metal = BlinnPhongMetal{Color: p.Color, Shininess: p.Shininess, R0: p.Fresnel}
	t.metalBlend = LinearBlend{W: p.Metalness, A: &t.metal, B: &t.dielectric}
	t.root = LinearBlend{W: p.Reflectivity, A: &t.metalBlend, B: &t.diffuse}
	return &t.root
}

// NewBRDF builds a standalone tree for p
func NewBRDF(p *Params) BRDF {
	var t Tree
	return t.Reset(p)
}
