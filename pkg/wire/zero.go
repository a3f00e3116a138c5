package wire

// Zero overwrites b with zero bytes in place. Go has no destructors, so this
// is best-effort hygiene for sensitive buffers (key material, mnemonic
// entropy) at the end of the function that holds them — not a guarantee
// against a copy made earlier by the garbage collector or escape analysis.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
