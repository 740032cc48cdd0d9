package chunky

// downsample creates the next lower resolution of src with a 2x2 box
// filter. The result is half the edge length of src.
func downsample(src *Chunk) *Chunk {
	size := max(1, src.Size()/2)
	dst := newChunk(src.pool, size, src.resolution+1)
	s, d := src.surface, dst.surface
	last := src.Size() - 1

	for dy := range size {
		for dx := range size {
			sx, sy := dx*2, dy*2
			o0 := s.PixOffset(sx, sy)
			o1 := s.PixOffset(min(sx+1, last), sy)
			o2 := s.PixOffset(sx, min(sy+1, last))
			o3 := s.PixOffset(min(sx+1, last), min(sy+1, last))
			do := d.PixOffset(dx, dy)
			for i := range 4 {
				sum := uint16(s.Pix[o0+i]) + uint16(s.Pix[o1+i]) + uint16(s.Pix[o2+i]) + uint16(s.Pix[o3+i])
				d.Pix[do+i] = byte(sum / 4)
			}
		}
	}
	return dst
}
