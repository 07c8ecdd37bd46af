package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
	"github.com/ironsheep/fiducial-tools-mcp/internal/store"
)

// errHistoryDisabled is returned by history operations when no store is configured.
var errHistoryDisabled = errors.New("measurement history is not enabled (set FIDUCIAL_HISTORY_DB)")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "fiducial_measure").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warning("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Fiducial Measurement
	case "fiducial_measure":
		return s.handleFiducialMeasure(args)
	case "fiducial_profile":
		return s.handleFiducialProfile(args)
	case "fiducial_history":
		return s.handleFiducialHistory(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Fiducial Measurement Handlers ===

// detectionArgs are the tuning arguments shared by the measurement tools.
// Pointers distinguish an explicit zero from an omitted argument.
type detectionArgs struct {
	CropTop      *int   `json:"crop_top"`
	CropBottom   *int   `json:"crop_bottom"`
	CropLeft     *int   `json:"crop_left"`
	CropRight    *int   `json:"crop_right"`
	PeakWidthMax *int   `json:"peak_width_max"`
	PeakDistMax  *int   `json:"peak_dist_max"`
	Polarity     string `json:"polarity"`
}

func (a detectionArgs) apply(p *detection.Params) error {
	setInt(&p.Crop.Top, a.CropTop)
	setInt(&p.Crop.Bottom, a.CropBottom)
	setInt(&p.Crop.Left, a.CropLeft)
	setInt(&p.Crop.Right, a.CropRight)
	setInt(&p.Limits.PeakWidthMax, a.PeakWidthMax)
	setInt(&p.Limits.PeakDistMax, a.PeakDistMax)
	if a.Polarity != "" {
		pol, err := detection.ParsePolarity(a.Polarity)
		if err != nil {
			return err
		}
		p.Polarity = pol
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

type fiducialMeasureArgs struct {
	detectionArgs
	Path              string  `json:"path"`
	RealWidth         float64 `json:"real_width"`
	Unit              string  `json:"unit"`
	BandWidth         *int    `json:"band_width"`
	VerticalCropExtra *int    `json:"vertical_crop_extra"`
	Annotate          bool    `json:"annotate"`
	Record            bool    `json:"record"`
}

// MeasureResult is the fiducial_measure tool result.
type MeasureResult struct {
	*detection.Measurement
	Annotated *imaging.EncodedImage `json:"annotated,omitempty"`
	RecordID  int64                 `json:"record_id,omitempty"`
}

func (s *Server) handleFiducialMeasure(args json.RawMessage) (interface{}, error) {
	var a fiducialMeasureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p := s.defaults
	p.RealWidth = a.RealWidth
	if a.Unit != "" {
		p.Unit = a.Unit
	}
	setInt(&p.BandWidth, a.BandWidth)
	setInt(&p.VerticalCropExtra, a.VerticalCropExtra)
	if err := a.apply(&p); err != nil {
		return nil, err
	}
	if a.Record && s.history == nil {
		return nil, errHistoryDisabled
	}

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	m, err := detection.Detect(r, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("%s: horizontal %v -> %s, vertical %v -> %s", a.Path,
		m.Horizontal.Absolute, m.Calibration.Label(m.Horizontal.Distance),
		m.Vertical.Absolute, m.Calibration.Label(m.Vertical.Distance))

	result := &MeasureResult{Measurement: m}
	if a.Annotate {
		enc, err := imaging.EncodePNG(imaging.Annotate(r, m.Annotation()))
		if err != nil {
			return nil, err
		}
		result.Annotated = enc
	}
	if a.Record {
		id, err := s.history.Insert(context.Background(), store.NewRecord(a.Path, m, time.Now()))
		if err != nil {
			return nil, err
		}
		result.RecordID = id
	}
	return result, nil
}

type fiducialProfileArgs struct {
	detectionArgs
	Path       string `json:"path"`
	Axis       string `json:"axis"`
	Band       *int   `json:"band"`
	Window     *int   `json:"window"`
	Degree     *int   `json:"degree"`
	Iterations *int   `json:"iterations"`
	Plot       bool   `json:"plot"`
}

// ProfileResult is the fiducial_profile tool result.
type ProfileResult struct {
	Axis     detection.Axis         `json:"axis"`
	Window   imaging.CropWindow     `json:"window"`
	Smoother detection.Smoother     `json:"smoother"`
	Profile  detection.Profile      `json:"profile"`
	Smoothed detection.Profile      `json:"smoothed"`
	Extrema  detection.ExtremumList `json:"extrema"`
	Pair     detection.SpikePair    `json:"pair"`
	Found    int                    `json:"found"`

	// Absolute holds the selected peaks in raster coordinates; empty slots
	// are reported as -1.
	Absolute [2]int                `json:"absolute"`
	Plot     *imaging.EncodedImage `json:"plot,omitempty"`
}

func (s *Server) handleFiducialProfile(args json.RawMessage) (interface{}, error) {
	var a fiducialProfileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p := s.defaults
	if err := a.apply(&p); err != nil {
		return nil, err
	}

	var cfg detection.PassConfig
	switch a.Axis {
	case "rows":
		cfg = p.HorizontalPass()
	case "columns":
		cfg = p.VerticalPass()
	default:
		return nil, fmt.Errorf("%w: axis must be rows or columns, got %q", detection.ErrInvalidParams, a.Axis)
	}
	setInt(&cfg.Band, a.Band)
	setInt(&cfg.Smoother.Window, a.Window)
	setInt(&cfg.Smoother.Degree, a.Degree)
	setInt(&cfg.Smoother.Iterations, a.Iterations)

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := r.Crop(p.Crop)
	if err != nil {
		return nil, err
	}
	an, err := detection.AnalyzeRegion(region, cfg)
	if err != nil {
		return nil, err
	}

	offset := p.Crop.Top
	if cfg.Axis == detection.AxisColumns {
		offset = p.Crop.Left
	}
	abs := [2]int{-1, -1}
	if !an.Pair.First.Empty() {
		abs[0] = an.Pair.First.Peak + offset
	}
	if !an.Pair.Second.Empty() {
		abs[1] = an.Pair.Second.Peak + offset
	}

	result := &ProfileResult{
		Axis:     cfg.Axis,
		Window:   p.Crop,
		Smoother: cfg.Smoother,
		Profile:  an.Profile,
		Smoothed: an.Smoothed,
		Extrema:  an.Extrema,
		Pair:     an.Pair,
		Found:    an.Pair.Found(),
		Absolute: abs,
	}
	if a.Plot {
		pass := &detection.DetectionResult{
			Axis:     cfg.Axis,
			Pair:     an.Pair,
			Profile:  an.Profile,
			Smoothed: an.Smoothed,
			Extrema:  an.Extrema,
		}
		img, err := imaging.PlotProfile(pass.PlotData())
		if err != nil {
			return nil, err
		}
		enc, err := imaging.EncodePNG(img)
		if err != nil {
			return nil, err
		}
		result.Plot = enc
	}
	return result, nil
}

type fiducialHistoryArgs struct {
	Path  string `json:"path"`
	Limit int    `json:"limit"`
}

// HistoryResult is the fiducial_history tool result.
type HistoryResult struct {
	Records []store.Record `json:"records"`
	Count   int            `json:"count"`
}

func (s *Server) handleFiducialHistory(args json.RawMessage) (interface{}, error) {
	var a fiducialHistoryArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if s.history == nil {
		return nil, errHistoryDisabled
	}

	records, err := s.history.Recent(context.Background(), a.Path, a.Limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []store.Record{}
	}
	return &HistoryResult{Records: records, Count: len(records)}, nil
}
