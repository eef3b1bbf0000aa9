package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func rectSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "number"},
			"y":      map[string]interface{}{"type": "number"},
			"width":  map[string]interface{}{"type": "number"},
			"height": map[string]interface{}{"type": "number"},
		},
		"required": []string{"width", "height"},
	}
}

var themeSchema = map[string]interface{}{
	"type":        "object",
	"description": "Optional light/dark pair. When present the result is one of the two, chosen by luminance. When absent the average colour is inverted.",
	"properties": map[string]interface{}{
		"light": map[string]interface{}{
			"type":        "string",
			"description": "Colour for dark backgrounds. Default #FFFFFF",
		},
		"dark": map[string]interface{}{
			"type":        "string",
			"description": "Colour for light backgrounds. Default #000000",
		},
	},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image from a path or http(s) URL and return its dimensions, format and whether its pixels are readable from the configured origin.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path or URL of the image",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path or URL of the image",
					},
				},
				"required": []string{"path"},
			},
		},

		// Contrast Operations
		{
			Name:        "contrast_compute",
			Description: "Compute a readable text colour for each target element laid over a background image. Each target's rectangle is mapped into image pixels (object-fit cover or contain), averaged, and resolved against the theme.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path or URL of the background image",
					},
					"background_image": map[string]interface{}{
						"type":        "string",
						"description": "CSS background-image value, e.g. url(\"hero.jpg\"). Used when path is empty",
					},
					"container": rectSchema("Container rectangle in page coordinates"),
					"targets": map[string]interface{}{
						"type":        "array",
						"description": "Target elements in page coordinates",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id":   map[string]interface{}{"type": "string"},
								"rect": rectSchema("Target rectangle"),
							},
							"required": []string{"rect"},
						},
					},
					"fit": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"cover", "contain"},
						"description": "How the image fills the container. Default cover",
					},
					"theme": themeSchema,
					"stride": map[string]interface{}{
						"type":        "integer",
						"description": "Sample every Nth pixel. Default 5",
					},
					"color_target": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"color", "background-color", "custom-property"},
						"description": "Which property receives the colour. Default color",
					},
					"custom_property": map[string]interface{}{
						"type":        "string",
						"description": "Custom property name for color_target custom-property. Default --contrast-color",
					},
					"resampler": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"imaging", "bild"},
						"description": "Resampling backend. Default imaging",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"nearest", "box", "linear", "catmullrom", "lanczos"},
						"description": "Resampling filter. Default linear",
					},
				},
				"required": []string{"container", "targets"},
			},
		},
		{
			Name:        "contrast_preview",
			Description: "Render the image pixels a target's colour is averaged from as a base64-encoded PNG. Use this to check what a target actually sits on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path or URL of the background image",
					},
					"background_image": map[string]interface{}{
						"type":        "string",
						"description": "CSS background-image value. Used when path is empty",
					},
					"container": rectSchema("Container rectangle in page coordinates"),
					"target":    rectSchema("Target rectangle in page coordinates"),
					"fit": map[string]interface{}{
						"type": "string",
						"enum": []string{"cover", "contain"},
					},
					"resampler": map[string]interface{}{
						"type": "string",
						"enum": []string{"imaging", "bild"},
					},
					"filter": map[string]interface{}{
						"type": "string",
						"enum": []string{"nearest", "box", "linear", "catmullrom", "lanczos"},
					},
					"stride": map[string]interface{}{
						"type":        "integer",
						"description": "Sample every Nth pixel for the reported average. Default 5",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the rendered preview. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"container", "target"},
			},
		},
		{
			Name:        "contrast_resolve",
			Description: "Resolve the contrasting colour for a background colour: a theme colour chosen by luminance, or the inverse colour without a theme.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Background colour as #rgb or #rrggbb",
					},
					"theme": themeSchema,
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "contrast_map_region",
			Description: "Map a target rectangle inside a container to the image pixels it covers, for an image scaled with object-fit cover or contain.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"container": rectSchema("Container rectangle in page coordinates"),
					"target":    rectSchema("Target rectangle in page coordinates"),
					"natural_width": map[string]interface{}{
						"type":        "number",
						"description": "Intrinsic image width",
					},
					"natural_height": map[string]interface{}{
						"type":        "number",
						"description": "Intrinsic image height",
					},
					"display_width": map[string]interface{}{
						"type":        "number",
						"description": "Reported image width. Defaults to natural_width",
					},
					"display_height": map[string]interface{}{
						"type":        "number",
						"description": "Reported image height. Defaults to natural_height",
					},
					"fit": map[string]interface{}{
						"type": "string",
						"enum": []string{"cover", "contain"},
					},
				},
				"required": []string{"container", "target", "natural_width", "natural_height"},
			},
		},
		{
			Name:        "color_hex",
			Description: "Convert between RGB components and hex notation. Pass hex to decode and normalise it, or r, g, b to encode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Colour as #rgb or #rrggbb",
					},
					"r": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
					"g": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
					"b": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
