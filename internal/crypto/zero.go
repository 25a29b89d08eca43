package crypto

// Zero overwrites a byte slice in place. Call it on raw key material as
// soon as the key leaves scope; the GC gives no such guarantee.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
