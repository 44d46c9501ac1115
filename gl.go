package main

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

type Texture struct {
	tex uint32
}

func (t Texture) Bind() {
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
}

func CreateTexture(wrapMode int32) (Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return Texture{}, fmt.Errorf("texture allocation failed")
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	return Texture{tex}, nil
}

func (t Texture) Close() error {
	if t.tex != 0 {
		gl.DeleteTextures(1, &t.tex)
		t.tex = 0
	}
	return nil
}

// DataTexture is the GPU side of the frequency ring buffer: a
// single-channel ALPHA texture whose rows are rewritten in place.
// The T axis repeats so shaders can address rows as texCoord.y plus
// the normalized offset without wrapping on the CPU.
type DataTexture struct {
	tex    Texture
	width  int
	height int
}

func CreateDataTexture() (*DataTexture, error) {
	tex, err := CreateTexture(gl.REPEAT)
	if err != nil {
		return nil, err
	}
	return &DataTexture{tex: tex}, nil
}

func (dt *DataTexture) Allocate(width, height int) error {
	dt.tex.Bind()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.ALPHA,
		int32(width), int32(height),
		0, gl.ALPHA, gl.UNSIGNED_BYTE, nil)
	checkGL("DataTexture.Allocate")
	dt.width = width
	dt.height = height
	return nil
}

func (dt *DataTexture) UploadRow(row int, data []byte) {
	dt.tex.Bind()
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		0, int32(row), int32(len(data)), 1,
		gl.ALPHA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	checkGL("DataTexture.UploadRow")
}

func (dt *DataTexture) BindUnit(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	dt.tex.Bind()
}

func (dt *DataTexture) Close() error {
	return dt.tex.Close()
}

type Shader struct {
	shader uint32
}

func GetShaderInfoLog(shader uint32) string {
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]uint8, length)
	var logLen int32
	gl.GetShaderInfoLog(shader, length, &logLen, &log[0])
	return string(log[:logLen])
}

func CreateShader(shaderType uint32, source string) (Shader, error) {
	shader := gl.CreateShader(shaderType)
	data := gl.Str(source + "\x00")
	length := int32(len(source))
	gl.ShaderSource(shader, 1, &data, &length)
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		return Shader{}, fmt.Errorf("shader compilation failed: %s", GetShaderInfoLog(shader))
	}
	return Shader{shader}, nil
}

func (s Shader) Close() error {
	if s.shader != 0 {
		gl.DeleteShader(s.shader)
		s.shader = 0
	}
	return nil
}

type Program struct {
	program        uint32
	vertexShader   Shader
	fragmentShader Shader
}

func GetProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]uint8, length)
	var logLen int32
	gl.GetProgramInfoLog(program, length, &logLen, &log[0])
	return string(log[:logLen])
}

func CreateProgram(vertexShader string, fragmentShader string) (Program, error) {
	vs, err := CreateShader(gl.VERTEX_SHADER, vertexShader)
	if err != nil {
		return Program{}, err
	}
	fs, err := CreateShader(gl.FRAGMENT_SHADER, fragmentShader)
	if err != nil {
		vs.Close()
		return Program{}, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs.shader)
	gl.AttachShader(program, fs.shader)
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return Program{}, fmt.Errorf("program link failed: %s", GetProgramInfoLog(program))
	}
	return Program{program, vs, fs}, nil
}

func (p Program) GetAttribLocation(name string) int32 {
	return gl.GetAttribLocation(p.program, gl.Str(name+"\x00"))
}

func (p Program) GetUniformLocation(name string) int32 {
	return gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
}

func (p Program) Use() {
	gl.UseProgram(p.program)
}

func (p Program) Close() error {
	if err := p.vertexShader.Close(); err != nil {
		return err
	}
	if err := p.fragmentShader.Close(); err != nil {
		return err
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
	return nil
}

// Pipeline is a linked program plus the fixed set of uniform and
// attribute handles every mode shader must expose. All names are
// resolved and validated once at load time, so a shader that breaks
// the contract is rejected up front instead of misrendering later.
type Pipeline struct {
	program Program

	worldViewProjection int32
	frequencyData       int32
	foregroundColor     int32
	backgroundColor     int32
	yoffset             int32
	vertexFrequencyData int32
	vertexYOffset       int32
	verticalScale       int32

	position  int32
	texCoord0 int32
}

func CreatePipeline(vertexSource, fragmentSource string, vertexSampler bool) (*Pipeline, error) {
	program, err := CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		program:             program,
		worldViewProjection: program.GetUniformLocation("worldViewProjection"),
		frequencyData:       program.GetUniformLocation("frequencyData"),
		foregroundColor:     program.GetUniformLocation("foregroundColor"),
		backgroundColor:     program.GetUniformLocation("backgroundColor"),
		yoffset:             program.GetUniformLocation("yoffset"),
		vertexFrequencyData: program.GetUniformLocation("vertexFrequencyData"),
		vertexYOffset:       program.GetUniformLocation("vertexYOffset"),
		verticalScale:       program.GetUniformLocation("verticalScale"),
		position:            program.GetAttribLocation("position"),
		texCoord0:           program.GetAttribLocation("texCoord0"),
	}
	required := map[string]int32{
		"worldViewProjection": p.worldViewProjection,
		"frequencyData":       p.frequencyData,
		"foregroundColor":     p.foregroundColor,
		"backgroundColor":     p.backgroundColor,
		"yoffset":             p.yoffset,
		"position":            p.position,
		"texCoord0":           p.texCoord0,
	}
	if vertexSampler {
		required["vertexFrequencyData"] = p.vertexFrequencyData
		required["vertexYOffset"] = p.vertexYOffset
		required["verticalScale"] = p.verticalScale
	}
	for name, loc := range required {
		if loc < 0 {
			program.Close()
			return nil, fmt.Errorf("shader does not expose %q", name)
		}
	}
	return p, nil
}

func (p *Pipeline) Close() error {
	return p.program.Close()
}

// Geometry holds a mesh uploaded into GPU vertex and index buffers.
type Geometry struct {
	vbo        uint32
	ebo        uint32
	indexCount int32
}

func UploadGeometry(m *Mesh) (*Geometry, error) {
	g := &Geometry{indexCount: int32(m.IndexCount())}
	gl.GenBuffers(1, &g.vbo)
	gl.GenBuffers(1, &g.ebo)
	if g.vbo == 0 || g.ebo == 0 {
		return nil, fmt.Errorf("buffer allocation failed")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(m.vertices)*int(unsafe.Sizeof(meshVertex{})),
		gl.Ptr(m.vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
		len(m.indices)*2,
		gl.Ptr(m.indices), gl.STATIC_DRAW)
	checkGL("UploadGeometry")
	return g, nil
}

// Draw issues the indexed draw call with the pipeline's attribute
// layout.
func (g *Geometry) Draw(p *Pipeline) {
	stride := int32(unsafe.Sizeof(meshVertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.EnableVertexAttribArray(uint32(p.position))
	gl.VertexAttribPointer(uint32(p.position), 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(p.texCoord0))
	gl.VertexAttribPointer(uint32(p.texCoord0), 2, gl.FLOAT, false, stride, gl.PtrOffset(12))
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
	checkGL("Geometry.Draw")
	gl.DisableVertexAttribArray(uint32(p.position))
	gl.DisableVertexAttribArray(uint32(p.texCoord0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

func (g *Geometry) Close() error {
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
		g.ebo = 0
	}
	return nil
}

// HasVertexTextureFetch reports whether the GPU can sample textures
// in the vertex stage, the capability the 3D mode needs to displace
// the heightfield. Queried once at init; fixed for the view lifetime.
func HasVertexTextureFetch() bool {
	var units int32
	gl.GetIntegerv(gl.MAX_VERTEX_TEXTURE_IMAGE_UNITS, &units)
	return units > 0
}
