package index

// Side names one of the two partitions of the index.
type Side string

const (
	// SideA is the first tree, the authoritative one during absorb.
	SideA Side = "a"
	// SideB is the second tree.
	SideB Side = "b"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Record is one indexed file on one side of the reconciliation.
type Record struct {
	// Side is the partition this record belongs to.
	Side Side

	// Hash is the content fingerprint. It is empty until computed; an
	// empty hash never matches anything during reconciliation.
	Hash string

	// Size is the byte length at scan time.
	Size int64

	// SideRoot is the absolute path of the tree root.
	SideRoot string

	// RelPath is the path relative to SideRoot, using the native separator.
	RelPath string
}
