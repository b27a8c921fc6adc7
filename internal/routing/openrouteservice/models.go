package openrouteservice

// orsRequest is the request body for the ORS directions endpoint.
// Coordinates are [lon, lat] pairs per the GeoJSON convention.
type orsRequest struct {
	Coordinates       [][]float64           `json:"coordinates"`
	AlternativeRoutes *orsAlternativeRoutes `json:"alternative_routes,omitempty"`
	Geometry          bool                  `json:"geometry"`
	Instructions      bool                  `json:"instructions"`
}

type orsAlternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
	ShareFactor  float64 `json:"share_factor"`
}

// orsResponse is the response from the ORS directions endpoint (JSON format,
// not GeoJSON). Geometry is an encoded polyline with precision 5.
type orsResponse struct {
	Routes []orsRoute `json:"routes"`
}

type orsRoute struct {
	Summary  orsSummary `json:"summary"`
	Geometry string     `json:"geometry"`
	BBox     []float64  `json:"bbox"`
}

type orsSummary struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// orsErrorResponse is the error body returned by ORS.
type orsErrorResponse struct {
	Error orsError `json:"error"`
}

type orsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ORS error codes relevant to route computation.
const (
	orsErrorCodeMissingParam  = 2000
	orsErrorCodeInvalidParam  = 2003
	orsErrorCodeOutOfRange    = 2004
	orsErrorCodeNotFound      = 2009
	orsErrorCodePointNotFound = 2010
)
