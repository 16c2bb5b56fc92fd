package gpu

import "fxdemo/internal/pipeline"

// quadVS is raylib's default 2D vertex stage; every pass draws one full-screen textured quad.
const quadVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec4 vertexColor;
uniform mat4 mvp;
out vec2 fragTexCoord;
out vec4 fragColor;
void main() {
  fragTexCoord = vertexTexCoord;
  fragColor = vertexColor;
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const header = `#version 330
in vec2 fragTexCoord;
in vec4 fragColor;
uniform sampler2D texture0;
uniform vec2 resolution;
out vec4 finalColor;
`

// depthHeader decodes the packed depth target written by the primitives depth material.
const depthHeader = `uniform sampler2D depthMap;
uniform float far;
float viewDepth(vec2 uv) {
  vec4 p = texture(depthMap, uv);
  return (p.r * 255.0 + p.g) / 255.0 * far;
}
`

const bloomFS = header + `
uniform float strength;
uniform float radius;
uniform float threshold;
uniform float smoothing;
float bright(vec3 c) {
  float l = dot(c, vec3(0.299, 0.587, 0.114));
  if (smoothing <= 0.0) return step(threshold, l);
  return smoothstep(threshold, threshold + smoothing, l);
}
void main() {
  vec4 base = texture(texture0, fragTexCoord);
  float sigma = radius * min(resolution.x, resolution.y) / 16.0;
  vec3 glow = vec3(0.0);
  if (sigma < 0.5) {
    glow = base.rgb * bright(base.rgb);
  } else {
    float total = 0.0;
    vec2 stepUV = sigma * 0.5 / resolution;
    for (int y = -4; y <= 4; y++) {
      for (int x = -4; x <= 4; x++) {
        vec2 o = vec2(float(x), float(y));
        float w = exp(-dot(o, o) / 8.0);
        vec3 c = texture(texture0, fragTexCoord + o * stepUV).rgb;
        glow += c * bright(c) * w;
        total += w;
      }
    }
    glow /= total;
  }
  finalColor = vec4(base.rgb + glow * strength, base.a);
}
`

const pixelationFS = header + depthHeader + `
uniform float pixelSize;
uniform float depthEdgeStrength;
void main() {
  vec2 block = max(pixelSize, 1.0) / resolution;
  vec2 uv = (floor(fragTexCoord / block) + 0.5) * block;
  vec4 c = texture(texture0, uv);
  if (depthEdgeStrength > 0.0) {
    float d = viewDepth(uv) / far;
    float gx = viewDepth(uv + vec2(block.x, 0.0)) / far - viewDepth(uv - vec2(block.x, 0.0)) / far;
    float gy = viewDepth(uv + vec2(0.0, block.y)) / far - viewDepth(uv - vec2(0.0, block.y)) / far;
    // A 5% depth step between neighbouring blocks is a full edge.
    float edge = clamp(length(vec2(gx, gy)) * 20.0, 0.0, 1.0) * step(d, 0.999);
    c.rgb *= 1.0 - depthEdgeStrength * edge;
  }
  finalColor = c;
}
`

const hueSaturationFS = header + `
uniform float hue;
uniform float saturation;
void main() {
  vec4 c = texture(texture0, fragTexCoord);
  float s = sin(hue * 3.14159265), k = cos(hue * 3.14159265);
  vec3 w = (vec3(2.0 * k, -sqrt(3.0) * s - k, sqrt(3.0) * s - k) + 1.0) / 3.0;
  c.rgb = vec3(dot(c.rgb, w.xyz), dot(c.rgb, w.zxy), dot(c.rgb, w.yzx));
  float avg = (c.r + c.g + c.b) / 3.0;
  if (saturation > 0.0) {
    c.rgb += (avg - c.rgb) * (1.0 - 1.0 / (1.001 - saturation));
  } else {
    c.rgb += (avg - c.rgb) * (-saturation);
  }
  finalColor = c;
}
`

const brightnessContrastFS = header + `
uniform float brightness;
uniform float contrast;
void main() {
  vec4 c = texture(texture0, fragTexCoord);
  c.rgb += brightness;
  if (contrast >= 1.0) {
    c.rgb = step(0.5, c.rgb);
  } else if (contrast > 0.0) {
    c.rgb = (c.rgb - 0.5) / (1.0 - contrast) + 0.5;
  } else {
    c.rgb = (c.rgb - 0.5) * (1.0 + contrast) + 0.5;
  }
  finalColor = c;
}
`

const vignetteFS = header + `
uniform float darkness;
uniform float offset;
void main() {
  vec4 c = texture(texture0, fragTexCoord);
  vec2 uv = (fragTexCoord - 0.5) * offset;
  finalColor = vec4(mix(c.rgb, vec3(1.0 - darkness), dot(uv, uv)), c.a);
}
`

const filmNoiseFS = header + `
uniform float intensity;
uniform float grayscale;
uniform float time;
float rand(vec2 co) {
  return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}
void main() {
  vec4 base = texture(texture0, fragTexCoord);
  float n = rand(fragTexCoord + mod(time, 3.14));
  vec3 c = base.rgb + intensity * base.rgb * clamp(0.1 + n, 0.0, 1.0);
  if (grayscale > 0.5) {
    c = vec3(dot(c, vec3(0.2126, 0.7152, 0.0722)));
  }
  finalColor = vec4(c, base.a);
}
`

const rgbShiftFS = header + `
uniform float amount;
uniform float angle;
void main() {
  vec2 o = amount * vec2(cos(angle), sin(angle));
  vec4 c = texture(texture0, fragTexCoord);
  float r = texture(texture0, fragTexCoord + o).r;
  float b = texture(texture0, fragTexCoord - o).b;
  finalColor = vec4(r, c.g, b, c.a);
}
`

const fxaaFS = header + `
float luma(vec3 c) { return dot(c, vec3(0.299, 0.587, 0.114)); }
void main() {
  vec2 px = 1.0 / resolution;
  vec4 c = texture(texture0, fragTexCoord);
  float m = luma(c.rgb);
  float n = luma(texture(texture0, fragTexCoord - vec2(0.0, px.y)).rgb);
  float s = luma(texture(texture0, fragTexCoord + vec2(0.0, px.y)).rgb);
  float e = luma(texture(texture0, fragTexCoord + vec2(px.x, 0.0)).rgb);
  float w = luma(texture(texture0, fragTexCoord - vec2(px.x, 0.0)).rgb);
  float hi = max(m, max(max(n, s), max(e, w)));
  float lo = min(m, min(min(n, s), min(e, w)));
  if (hi - lo < max(0.0312, hi * 0.125)) {
    finalColor = c;
    return;
  }
  vec2 axis = abs(n + s - 2.0 * m) < abs(e + w - 2.0 * m) ? vec2(px.x, 0.0) : vec2(0.0, px.y);
  vec3 blend = 0.5 * c.rgb + 0.25 * texture(texture0, fragTexCoord - axis).rgb + 0.25 * texture(texture0, fragTexCoord + axis).rgb;
  finalColor = vec4(blend, c.a);
}
`

const depthOfFieldFS = header + depthHeader + `
uniform float focus;
uniform float maxblur;
uniform float aperture;
void main() {
  vec4 c = texture(texture0, fragTexCoord);
  float coc = min(abs(focus - viewDepth(fragTexCoord)) * aperture, maxblur);
  if (coc <= 0.0) {
    finalColor = c;
    return;
  }
  vec2 aspect = vec2(1.0, resolution.x / resolution.y);
  vec3 col = c.rgb;
  float n = 1.0;
  for (int ring = 1; ring <= 3; ring++) {
    for (int k = 0; k < 12; k++) {
      float a = 6.2831853 * float(k) / 12.0 + float(ring) * 0.26;
      vec2 o = vec2(cos(a), sin(a)) * (float(ring) / 3.0) * coc * aspect;
      col += texture(texture0, fragTexCoord + o).rgb;
      n += 1.0;
    }
  }
  finalColor = vec4(col / n, c.a);
}
`

var fragmentShaders = map[pipeline.Kind]string{
	pipeline.Bloom:               bloomFS,
	pipeline.Pixelation:          pixelationFS,
	pipeline.HueSaturation:       hueSaturationFS,
	pipeline.BrightnessContrast:  brightnessContrastFS,
	pipeline.Vignette:            vignetteFS,
	pipeline.FilmNoise:           filmNoiseFS,
	pipeline.ChromaticAberration: rgbShiftFS,
	pipeline.AntiAliasing:        fxaaFS,
	pipeline.DepthOfField:        depthOfFieldFS,
}
