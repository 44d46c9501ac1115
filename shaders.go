package main

// GLSL ES 1.00 sources for the four render modes. Every program
// exposes the full binding table contract checked by CreatePipeline;
// the 3D sonogram additionally samples the ring buffer in the vertex
// stage to displace the heightfield.

const commonVertexShader = `
    precision highp float;
    attribute vec3 position;
    attribute vec2 texCoord0;
    uniform mat4 worldViewProjection;
    varying vec2 texCoord;
    void main(void) {
      gl_Position = worldViewProjection * vec4(position, 1.0);
      texCoord = texCoord0;
    }`

const frequencyFragmentShader = `
    precision mediump float;
    uniform sampler2D frequencyData;
    uniform vec4 foregroundColor;
    uniform vec4 backgroundColor;
    uniform float yoffset;
    varying vec2 texCoord;
    void main(void) {
      float magnitude = texture2D(frequencyData, vec2(texCoord.x, yoffset)).a;
      gl_FragColor = mix(backgroundColor, foregroundColor, step(texCoord.y, magnitude));
    }`

const waveformFragmentShader = `
    precision mediump float;
    uniform sampler2D frequencyData;
    uniform vec4 foregroundColor;
    uniform vec4 backgroundColor;
    uniform float yoffset;
    varying vec2 texCoord;
    void main(void) {
      float wave = texture2D(frequencyData, vec2(texCoord.x, yoffset)).a;
      float intensity = 1.0 - smoothstep(0.005, 0.02, abs(texCoord.y - wave));
      gl_FragColor = mix(backgroundColor, foregroundColor, intensity);
    }`

const sonogramFragmentShader = `
    precision mediump float;
    uniform sampler2D frequencyData;
    uniform vec4 foregroundColor;
    uniform vec4 backgroundColor;
    uniform float yoffset;
    varying vec2 texCoord;
    void main(void) {
      float magnitude = texture2D(frequencyData, vec2(texCoord.x, texCoord.y + yoffset)).a;
      gl_FragColor = mix(backgroundColor, foregroundColor, sqrt(magnitude));
    }`

const sonogram3DVertexShader = `
    precision highp float;
    attribute vec3 position;
    attribute vec2 texCoord0;
    uniform mat4 worldViewProjection;
    uniform sampler2D vertexFrequencyData;
    uniform float vertexYOffset;
    uniform float verticalScale;
    varying vec2 texCoord;
    void main(void) {
      float magnitude = texture2D(vertexFrequencyData, vec2(texCoord0.x, texCoord0.y + vertexYOffset)).a;
      vec4 displaced = vec4(position.x, magnitude * verticalScale, position.z, 1.0);
      gl_Position = worldViewProjection * displaced;
      texCoord = texCoord0;
    }`

const sonogram3DFragmentShader = `
    precision mediump float;
    uniform sampler2D frequencyData;
    uniform vec4 foregroundColor;
    uniform vec4 backgroundColor;
    uniform float yoffset;
    varying vec2 texCoord;
    void main(void) {
      float magnitude = texture2D(frequencyData, vec2(texCoord.x, texCoord.y + yoffset)).a;
      gl_FragColor = mix(backgroundColor, foregroundColor, sqrt(magnitude));
    }`
