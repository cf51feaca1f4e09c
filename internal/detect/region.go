package detect

import (
	"fmt"
	"sort"
)

// Region is one padded bounding box around a cluster of changed pixels.
// X2/Y2 are inclusive; Area is the padded box area while Pixels is the
// number of changed pixels the cluster actually contains.
type Region struct {
	ID       string  `json:"id"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	W        int     `json:"w"`
	H        int     `json:"h"`
	X2       int     `json:"x2"`
	Y2       int     `json:"y2"`
	Pixels   int     `json:"pixels"`
	Area     int     `json:"area"`
	Coverage float64 `json:"coverage"`
	Rel      RelBox  `json:"rel"`
	Intent   string  `json:"intent"`
	Action   string  `json:"action"`
}

// RelBox is a region's box in 0-1 coordinates relative to the image size.
type RelBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// cluster is a raw connected component before filtering and padding.
type cluster struct {
	minX, minY int
	maxX, maxY int
	pixels     int
}

// Rank clusters the mask's changed pixels with a 4-connected flood fill,
// drops clusters below cfg.MinArea, orders the survivors largest first and
// keeps at most cfg.MaxBoxes, then pads and clips each box.
//
// Ties on cluster size break by top-left position (y, then x) so the
// output order is stable across runs.
func Rank(m *Mask, cfg Config) []Region {
	clusters := findClusters(m)

	kept := clusters[:0]
	for _, c := range clusters {
		if c.pixels >= cfg.MinArea {
			kept = append(kept, c)
		}
	}
	sortClusters(kept)
	if cfg.MaxBoxes > 0 && len(kept) > cfg.MaxBoxes {
		kept = kept[:cfg.MaxBoxes]
	}

	regions := make([]Region, 0, len(kept))
	for i, c := range kept {
		x0 := max(c.minX-cfg.Pad, 0)
		y0 := max(c.minY-cfg.Pad, 0)
		x1 := min(c.maxX+cfg.Pad, m.W-1)
		y1 := min(c.maxY+cfg.Pad, m.H-1)
		w := x1 - x0 + 1
		h := y1 - y0 + 1
		area := w * h
		r := Region{
			ID:       fmt.Sprintf("change-%d", i+1),
			X:        x0,
			Y:        y0,
			W:        w,
			H:        h,
			X2:       x1,
			Y2:       y1,
			Pixels:   c.pixels,
			Area:     area,
			Coverage: roundTo(float64(c.pixels)/float64(area), 4),
			Rel: RelBox{
				X: roundTo(float64(x0)/float64(m.W), 6),
				Y: roundTo(float64(y0)/float64(m.H), 6),
				W: roundTo(float64(w)/float64(m.W), 6),
				H: roundTo(float64(h)/float64(m.H), 6),
			},
			Intent: "changed-region",
			Action: "inspect",
		}
		regions = append(regions, r)
	}
	return regions
}

// findClusters flood-fills every changed pixel into 4-connected components.
// The fill is iterative; a recursive fill would blow the stack on a
// full-screen change.
func findClusters(m *Mask) []cluster {
	visited := make([]bool, m.W*m.H)
	var clusters []cluster
	queue := make([][2]int, 0, 256)

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			idx := y*m.W + x
			if visited[idx] || !m.Changed(x, y) {
				continue
			}
			c := cluster{minX: x, minY: y, maxX: x, maxY: y}
			visited[idx] = true
			queue = append(queue[:0], [2]int{x, y})
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				px, py := p[0], p[1]
				c.pixels++
				if px < c.minX {
					c.minX = px
				}
				if px > c.maxX {
					c.maxX = px
				}
				if py < c.minY {
					c.minY = py
				}
				if py > c.maxY {
					c.maxY = py
				}
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := px+d[0], py+d[1]
					if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
						continue
					}
					nidx := ny*m.W + nx
					if visited[nidx] || !m.Changed(nx, ny) {
						continue
					}
					visited[nidx] = true
					queue = append(queue, [2]int{nx, ny})
				}
			}
			clusters = append(clusters, c)
		}
	}
	return clusters
}

// sortClusters orders by changed-pixel count descending, then by top-left
// position for deterministic output.
func sortClusters(cs []cluster) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.pixels != b.pixels {
			return a.pixels > b.pixels
		}
		if a.minY != b.minY {
			return a.minY < b.minY
		}
		return a.minX < b.minX
	})
}
