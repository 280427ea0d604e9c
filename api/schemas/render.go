package schemas

import (
	"time"
)

// -- Render Result Schemas --

// RenderEnvelope is the top level wrapper for everything a single render
// pass produced.
type RenderEnvelope struct {
	PassID        string        `json:"pass_id"`
	Timestamp     time.Time     `json:"timestamp"`
	ViewportWidth float64       `json:"viewport_width"`
	Stats         RenderStats   `json:"stats"`
	BoxTree       *BoxNode      `json:"box_tree,omitempty"`
	Probes        []ProbeResult `json:"probes,omitempty"`
}

// RenderStats summarizes the size of the produced trees.
type RenderStats struct {
	StyledNodes int `json:"styled_nodes"`
	Boxes       int `json:"boxes"`
}

// BoxNode is the serializable form of one layout box.
type BoxNode struct {
	// Kind is the box type: "block", "inline", or "anonymous".
	Kind string `json:"kind"`
	// Tag is the element tag name; empty for anonymous boxes.
	Tag string `json:"tag,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Margin  EdgeSizes `json:"margin"`
	Border  EdgeSizes `json:"border"`
	Padding EdgeSizes `json:"padding"`

	Children []*BoxNode `json:"children,omitempty"`
}

// EdgeSizes carries the per-side sizes of one box-model ring.
type EdgeSizes struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// ProbeResult reports what a hit-test probe found at one point.
type ProbeResult struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Hit bool    `json:"hit"`
	// Kind and Tag describe the deepest box containing the point, when any.
	Kind string `json:"kind,omitempty"`
	Tag  string `json:"tag,omitempty"`
}
