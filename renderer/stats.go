package renderer

import "time"

type BlockStat struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Render time for the block.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual block stats.
	Blocks []BlockStat

	// Number of primary and occlusion rays cast.
	Rays uint64

	// Number of primary rays that hit the scene.
	Hits uint64

	// Number of triangles tested against.
	Triangles int

	// Total render time for entire frame.
	RenderTime time.Duration
}
