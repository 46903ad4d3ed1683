package epctx

import "github.com/strataml/strata/internal/graph"

// ContextNodeInfo is the inspection view of one context node, shared by
// the CLI and the HTTP service.
type ContextNodeInfo struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	IsMain         bool   `json:"is_main"`
	EmbedMode      bool   `json:"embed_mode"`
	SDKVersion     string `json:"sdk_version,omitempty"`
	SourceTag      string `json:"source_tag,omitempty"`
	CacheFile      string `json:"cache_file,omitempty"`
	PayloadSize    int    `json:"payload_size,omitempty"`
	MaxScratchSize int64  `json:"max_scratch_size,omitempty"`
}

// Summarize lists every context node of the graph in scan order.
func Summarize(g *graph.Graph) []ContextNodeInfo {
	if g == nil {
		return nil
	}
	var out []ContextNodeInfo
	for _, n := range g.Nodes {
		if !IsContextNode(n) {
			continue
		}
		info := ContextNodeInfo{
			Index:          len(out),
			Name:           n.Name,
			IsMain:         n.AttrInt(AttrIsMain, 0) == 1,
			EmbedMode:      n.AttrInt(AttrEmbedMode, 1) == 1,
			SDKVersion:     n.AttrString(AttrSDKVersion, ""),
			SourceTag:      n.AttrString(AttrSourceTag, ""),
			MaxScratchSize: n.AttrInt(AttrMaxScratchSize, 0),
		}
		if info.EmbedMode {
			info.PayloadSize = len(n.AttrBytes(AttrCachePayload))
		} else {
			info.CacheFile = n.AttrString(AttrCachePayload, "")
		}
		out = append(out, info)
	}
	return out
}
