package loaders

import (
	"strings"
	"testing"
)

const furnacePBRT = `
LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" [40]
Film "image" "integer xresolution" [64] "integer yresolution" [64]

WorldBegin

LightSource "infinite" "rgb L" [1 1 1]

AttributeBegin
  Material "matte" "rgb Kd" [0.5 0.5 0.5]
  Shape "sphere" "float radius" [1]
AttributeEnd

WorldEnd
`

func TestLoadPBRTFurnaceScene(t *testing.T) {
	scene, err := LoadPBRT(strings.NewReader(furnacePBRT))
	if err != nil {
		t.Fatalf("LoadPBRT returned error: %v", err)
	}
	if scene.Camera.Width != 64 || scene.Camera.Height != 64 {
		t.Errorf("camera resolution = %dx%d, want 64x64", scene.Camera.Width, scene.Camera.Height)
	}
	if scene.Scene.Lights.Len() != 1 {
		t.Errorf("light count = %d, want 1 (the infinite dome)", scene.Scene.Lights.Len())
	}
}

func TestLoadPBRTAreaLight(t *testing.T) {
	const src = `
WorldBegin
AttributeBegin
  AreaLightSource "diffuse" "rgb L" [4 4 4]
  Shape "sphere" "float radius" [0.5]
AttributeEnd
WorldEnd
`
	scene, err := LoadPBRT(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadPBRT returned error: %v", err)
	}
	if scene.Scene.Lights.Len() != 1 {
		t.Errorf("light count = %d, want 1 (the emissive sphere)", scene.Scene.Lights.Len())
	}
}

func TestTokenizeStripsQuotesAndBrackets(t *testing.T) {
	tokens := tokenize(`Shape "sphere" "float radius" [1.5]`)
	want := []string{"Shape", "sphere", "float radius", "[", "1.5", "]"}
	if len(tokens) != len(want) {
		t.Fatalf("tokenize returned %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}
