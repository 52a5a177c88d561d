package renderer

// Split a frame into consecutive blocks of blockH rows. The last block
// receives the remaining rows.
func splitRows(frameH, blockH uint32) []BlockStat {
	if frameH == 0 {
		return nil
	}
	if blockH == 0 || blockH > frameH {
		blockH = frameH
	}

	blocks := make([]BlockStat, 0, (frameH+blockH-1)/blockH)
	for y := uint32(0); y < frameH; y += blockH {
		blocks = append(blocks, BlockStat{
			BlockY: y,
			BlockH: min(blockH, frameH-y),
		})
	}
	return blocks
}
