package loaders

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/integrator"
	"github.com/lumenforge/tracecore/pkg/material"
)

// This is a reduced-scope PBRT-subset scene loader: a reference adapter,
// not the core's responsibility (§1's Non-goals exclude scene parsing
// from the core), grounded on the teacher's pkg/loaders/pbrt.go tokenizer
// but covering only the directives a handful of end-to-end scenes need:
// LookAt/Camera/Film for the view, WorldBegin/End and Attribute blocks
// for scoping, Translate for placement, Material "matte" for diffuse
// surfaces, LightSource "infinite" and AreaLightSource "diffuse" for
// emission, and Shape "sphere" for geometry. Full PBRT (triangle meshes,
// the rest of its material/shape/light catalog, named coordinate
// systems) is out of scope; see DESIGN.md.

var topLevelKeywords = map[string]bool{
	"LookAt": true, "Camera": true, "Film": true, "Sampler": true,
	"Integrator": true, "WorldBegin": true, "WorldEnd": true,
	"AttributeBegin": true, "AttributeEnd": true, "Translate": true,
	"Material": true, "Shape": true, "LightSource": true,
	"AreaLightSource": true, "ReverseOrientation": true,
}

// tokenize splits PBRT source into a flat token stream: quoted strings
// become single tokens (quotes stripped), '[' and ']' become their own
// delimiter tokens, everything else splits on whitespace. '#' starts a
// line comment.
func tokenize(src string) []string {
	var tokens []string
	runes := []rune(src)
	i, n := 0, len(runes)
	for i < n {
		c := runes[i]
		switch {
		case c == '#':
			for i < n && runes[i] != '\n' {
				i++
			}
		case c == '"':
			j := i + 1
			for j < n && runes[j] != '"' {
				j++
			}
			tokens = append(tokens, string(runes[i+1:j]))
			i = j + 1
		case c == '[' || c == ']':
			tokens = append(tokens, string(c))
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			j := i
			for j < n && !strings.ContainsRune(" \t\n\r[]\"#", runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		}
	}
	return tokens
}

type pbrtParser struct {
	tokens []string
	pos    int
}

func (p *pbrtParser) atEnd() bool { return p.pos >= len(p.tokens) }
func (p *pbrtParser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.tokens[p.pos]
}
func (p *pbrtParser) next() string {
	t := p.peek()
	p.pos++
	return t
}
func (p *pbrtParser) nextFloat() float64 {
	f, _ := strconv.ParseFloat(p.next(), 64)
	return f
}

// params reads zero or more "type name" [ values... ] groups following a
// directive's subtype, stopping at the next top-level keyword.
func (p *pbrtParser) params() map[string][]string {
	out := map[string][]string{}
	for !p.atEnd() && !topLevelKeywords[p.peek()] {
		decl := p.next() // "float fov" / "rgb Kd" / "rgb L" / ...
		fields := strings.Fields(decl)
		name := decl
		if len(fields) == 2 {
			name = fields[1]
		}
		if p.peek() != "[" {
			continue
		}
		p.next() // consume '['
		var values []string
		for !p.atEnd() && p.peek() != "]" {
			values = append(values, p.next())
		}
		p.next() // consume ']'
		out[name] = values
	}
	return out
}

func paramVec3(params map[string][]string, name string, fallback core.Vec3) core.Vec3 {
	v, ok := params[name]
	if !ok || len(v) < 3 {
		return fallback
	}
	x, _ := strconv.ParseFloat(v[0], 64)
	y, _ := strconv.ParseFloat(v[1], 64)
	z, _ := strconv.ParseFloat(v[2], 64)
	return core.Vec3{X: x, Y: y, Z: z}
}

func paramFloat(params map[string][]string, name string, fallback float64) float64 {
	v, ok := params[name]
	if !ok || len(v) < 1 {
		return fallback
	}
	f, _ := strconv.ParseFloat(v[0], 64)
	return f
}

func paramInt(params map[string][]string, name string, fallback int) int {
	return int(paramFloat(params, name, float64(fallback)))
}

// Scene is the result of loading a PBRT-subset file: a ready camera and
// a built integrator.Scene.
type Scene struct {
	Camera *geometry.Camera
	Scene  *integrator.Scene
}

// LoadPBRTFile reads and parses a PBRT-subset scene file from disk.
func LoadPBRTFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening %q: %w", path, err)
	}
	defer f.Close()
	return LoadPBRT(f)
}

// LoadPBRT parses a PBRT-subset scene from an io.Reader.
func LoadPBRT(r io.Reader) (*Scene, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loaders: reading scene: %w", err)
	}
	p := &pbrtParser{tokens: tokenize(string(src))}

	camCfg := geometry.CameraConfig{
		LookFrom: core.Vec3{Z: 1}, LookAt: core.Vec3{}, Up: core.Vec3{Y: 1},
		VFov: 40, AspectRatio: 1, Width: 640, Height: 480,
	}

	var prims []geometry.Primitive
	var infinites []geometry.Primitive

	var currentAlbedo = core.Splat(0.5)
	var pendingAreaLight core.Vec3
	var hasPendingAreaLight bool
	var translation core.Vec3

	type attrState struct {
		albedo      core.Vec3
		areaLight   core.Vec3
		hasAreaLight bool
		translation core.Vec3
	}
	var stack []attrState

	for !p.atEnd() {
		kw := p.next()
		switch kw {
		case "LookAt":
			camCfg.LookFrom = core.Vec3{X: p.nextFloat(), Y: p.nextFloat(), Z: p.nextFloat()}
			camCfg.LookAt = core.Vec3{X: p.nextFloat(), Y: p.nextFloat(), Z: p.nextFloat()}
			camCfg.Up = core.Vec3{X: p.nextFloat(), Y: p.nextFloat(), Z: p.nextFloat()}

		case "Camera":
			p.next() // subtype, "perspective" is the only one supported
			params := p.params()
			camCfg.VFov = paramFloat(params, "fov", camCfg.VFov)

		case "Film":
			p.next() // subtype, "image"
			params := p.params()
			camCfg.Width = paramInt(params, "xresolution", camCfg.Width)
			camCfg.Height = paramInt(params, "yresolution", camCfg.Height)
			if camCfg.Height > 0 {
				camCfg.AspectRatio = float64(camCfg.Width) / float64(camCfg.Height)
			}

		case "Sampler", "Integrator":
			p.next()
			p.params()

		case "WorldBegin", "WorldEnd", "ReverseOrientation":
			// no state to track for a single-coordinate-system subset

		case "AttributeBegin":
			stack = append(stack, attrState{currentAlbedo, pendingAreaLight, hasPendingAreaLight, translation})

		case "AttributeEnd":
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				currentAlbedo, pendingAreaLight, hasPendingAreaLight, translation = top.albedo, top.areaLight, top.hasAreaLight, top.translation
			}

		case "Translate":
			translation = translation.Add(core.Vec3{X: p.nextFloat(), Y: p.nextFloat(), Z: p.nextFloat()})

		case "Material":
			p.next() // subtype, "matte" is the only one supported
			params := p.params()
			currentAlbedo = paramVec3(params, "Kd", currentAlbedo)

		case "LightSource":
			subtype := p.next()
			params := p.params()
			l := paramVec3(params, "L", core.Splat(1))
			if subtype == "infinite" {
				infinites = append(infinites, geometry.NewInfiniteSphere(material.NewSolidColor(l)))
			}

		case "AreaLightSource":
			p.next() // subtype, "diffuse"
			params := p.params()
			pendingAreaLight = paramVec3(params, "L", core.Splat(1))
			hasPendingAreaLight = true

		case "Shape":
			subtype := p.next()
			params := p.params()
			if subtype != "sphere" {
				continue
			}
			radius := paramFloat(params, "radius", 1)
			base := material.NewLambertian(material.NewSolidColor(currentAlbedo))
			var bsdf material.BSDF = base
			if hasPendingAreaLight {
				bsdf = material.NewEmissive(base, material.NewSolidColor(pendingAreaLight), 1, false)
			}
			prims = append(prims, geometry.NewSphere(translation, radius, bsdf))
			hasPendingAreaLight = false

		default:
			// unrecognized directive: skip any trailing params so the
			// token stream stays in sync.
			if !topLevelKeywords[kw] {
				p.params()
			}
		}
	}

	camera := geometry.NewCamera(camCfg)
	root := geometry.NewAggregate(prims)
	allPrims := append(append([]geometry.Primitive{}, prims...), infinites...)
	scene := integrator.NewScene(root, infinites, allPrims, nil)

	return &Scene{Camera: camera, Scene: scene}, nil
}
