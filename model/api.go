package model

import "strings"

// Api is the graphics API a trace captures.
type Api int

const (
	ApiUnspecified Api = iota
	ApiGLES
	ApiVulkan
)

// Apis lists the selectable APIs in display order.
var Apis = []Api{ApiGLES, ApiVulkan}

// ParseApi parses an API name as written by String or by older settings
// files ("GLES", "Vulkan"). Unknown names yield ApiUnspecified.
func ParseApi(s string) Api {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gles", "opengles":
		return ApiGLES
	case "vulkan":
		return ApiVulkan
	}
	return ApiUnspecified
}

func (a Api) String() string {
	switch a {
	case ApiGLES:
		return "gles"
	case ApiVulkan:
		return "vulkan"
	}
	return ""
}

// DisplayName returns the human readable API name.
func (a Api) DisplayName() string {
	switch a {
	case ApiGLES:
		return "OpenGL ES"
	case ApiVulkan:
		return "Vulkan"
	}
	return "Unspecified"
}

// Platform selects the kind of trace target.
type Platform string

const (
	Android Platform = "android"
	Desktop Platform = "desktop"
)
