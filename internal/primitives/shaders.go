package primitives

// All passes share raylib's default vertex attribute names: vertexPosition, vertexTexCoord, vertexNormal.
const (
	worldVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	// basicFS is unlit: the instance colour only.
	basicFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
out vec4 finalColor;
void main() {
  finalColor = colDiffuse;
}
`
	// litFS is ambient plus up to maxLights directional lights; light colours carry their intensity.
	litFS = `#version 330
#define MAX_LIGHTS 4
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform vec3 ambient;
uniform float lightCount;
uniform vec3 lightDir[MAX_LIGHTS];
uniform vec3 lightColor[MAX_LIGHTS];
out vec4 finalColor;
void main() {
  vec4 tint = texture(texture0, fragTexCoord) * colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 light = ambient;
  for (int i = 0; i < MAX_LIGHTS; i++) {
    if (float(i) >= lightCount) break;
    light += lightColor[i] * max(dot(N, normalize(lightDir[i])), 0.0);
  }
  finalColor = vec4(tint.rgb * light, tint.a);
}
`
	// depthFS writes view distance / far packed into red (coarse) and green (fine).
	depthFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec3 viewPos;
uniform float far;
out vec4 finalColor;
void main() {
  float d = clamp(length(fragPosition - viewPos) / far, 0.0, 1.0) * 255.0;
  float hi = floor(d);
  finalColor = vec4(hi / 255.0, d - hi, 0.0, 1.0);
}
`
)

// maxLights matches MAX_LIGHTS in litFS.
const maxLights = 4
