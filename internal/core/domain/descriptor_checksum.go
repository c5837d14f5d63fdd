package domain

// Descriptor checksum as defined in BIP-380.

const (
	descriptorInputCharset = "0123456789()[],'/*abcdefgh@:$%{}" +
		"IJKLMNOPQRSTUVWXYZ&+-.;<=>?!^_|~" +
		"ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "
	descriptorChecksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
)

var descriptorGenerator = [5]uint64{
	0xf5dee51989, 0xa9fdca3312, 0x1bab10e32d, 0x3706b1677a, 0x644d626ffd,
}

func descriptorPolymod(c uint64, val int) uint64 {
	top := c >> 35
	c = (c&0x7ffffffff)<<5 ^ uint64(val)
	for i, g := range descriptorGenerator {
		if (top>>uint(i))&1 == 1 {
			c ^= g
		}
	}
	return c
}

// descriptorChecksum returns the 8 char checksum of the descriptor, or an
// empty string if it contains chars outside of the descriptor charset.
func descriptorChecksum(desc string) string {
	c := uint64(1)
	cls, clsCount := 0, 0
	for _, ch := range desc {
		pos := indexOf(descriptorInputCharset, ch)
		if pos < 0 {
			return ""
		}
		c = descriptorPolymod(c, pos&31)
		cls = cls*3 + (pos >> 5)
		clsCount++
		if clsCount == 3 {
			c = descriptorPolymod(c, cls)
			cls, clsCount = 0, 0
		}
	}
	if clsCount > 0 {
		c = descriptorPolymod(c, cls)
	}
	for i := 0; i < 8; i++ {
		c = descriptorPolymod(c, 0)
	}
	c ^= 1

	checksum := make([]byte, 8)
	for i := range checksum {
		checksum[i] = descriptorChecksumCharset[(c>>(5*(7-uint(i))))&31]
	}
	return string(checksum)
}

func indexOf(charset string, ch rune) int {
	for i, c := range charset {
		if c == ch {
			return i
		}
	}
	return -1
}
