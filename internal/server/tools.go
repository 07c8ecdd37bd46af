package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// detectionProperties are the optional tuning arguments shared by the
// measurement tools.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"crop_top": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels to ignore from the top edge (default 100)",
		},
		"crop_bottom": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels to ignore from the bottom edge (default 300)",
		},
		"crop_left": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels to ignore from the left edge (default 100)",
		},
		"crop_right": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels to ignore from the right edge (default 100)",
		},
		"peak_width_max": map[string]interface{}{
			"type":        "integer",
			"description": "Reject spikes whose flanking minima are this many pixels apart or more (default 80)",
		},
		"peak_dist_max": map[string]interface{}{
			"type":        "integer",
			"description": "Reject spikes farther than this many pixels from both ends of the scanned region (default 1000)",
		},
		"polarity": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"bright", "dark"},
			"description": "Whether marks are brighter or darker than their surroundings (default bright)",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file (PNG, JPEG, GIF, TIFF, BMP) as grayscale and return its dimensions, format and mean intensity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-read the file even if it is already cached",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Fiducial Measurement
		{
			Name:        "fiducial_measure",
			Description: "Detect the two horizontal marks (sample top/bottom edges) and the two vertical marks between them, and return both separations in physical units. The real-world width of the whole image must be supplied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"real_width": map[string]interface{}{
						"type":        "number",
						"description": "Width of the whole image in physical units (must be > 0)",
					},
					"unit": map[string]interface{}{
						"type":        "string",
						"description": "Unit label for distances (default microns)",
					},
					"band_width": map[string]interface{}{
						"type":        "integer",
						"description": "Central columns averaged to find the horizontal marks (default 2000, clamped to the crop)",
					},
					"vertical_crop_extra": map[string]interface{}{
						"type":        "integer",
						"description": "Rows removed inside each horizontal mark before the vertical pass (default 50)",
					},
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG",
						"default":     false,
					},
					"record": map[string]interface{}{
						"type":        "boolean",
						"description": "Store the result in the measurement history (when enabled)",
						"default":     false,
					},
				}, detectionProperties()),
				"required": []string{"path", "real_width"},
			},
		},
		{
			Name:        "fiducial_profile",
			Description: "Run a single detection pass along one axis of a cropped region and return the intensity profile, smoothed profile, extrema and selected spikes. Useful for tuning parameters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"axis": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"rows", "columns"},
						"description": "rows finds horizontal marks, columns finds vertical marks",
					},
					"band": map[string]interface{}{
						"type":        "integer",
						"description": "Centred band averaged across the axis (0 = full extent; rows default to the configured band width)",
					},
					"window": map[string]interface{}{
						"type":        "integer",
						"description": "Savitzky-Golay window, odd (default 9 for rows, 21 for columns)",
					},
					"degree": map[string]interface{}{
						"type":        "integer",
						"description": "Savitzky-Golay polynomial degree (default 2)",
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Number of smoothing passes (default 10)",
					},
					"plot": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the diagnostic plot as base64 PNG",
						"default":     false,
					},
				}, detectionProperties()),
				"required": []string{"path", "axis"},
			},
		},
		{
			Name:        "fiducial_history",
			Description: "List recently recorded measurements, newest first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Only return measurements of this image",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of records (default 50)",
						"default":     50,
					},
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
