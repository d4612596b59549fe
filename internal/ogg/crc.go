package ogg

// crcTable is the lookup table for the Ogg page checksum: CRC-32 with
// polynomial 0x04c11db7, zero initial value, no reflection and no final xor.
// hash/crc32 only implements the reflected form.
var crcTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// checksum computes the page checksum over b, which must hold the page with
// its checksum field zeroed.
func checksum(b []byte) uint32 {
	var crc uint32
	for _, c := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^c]
	}
	return crc
}
