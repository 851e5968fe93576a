package identity

// StarKey names one star (process node) in the mesh. Keys are opaque,
// human-assigned names (e.g. "central", "edge-1") rather than derived
// identifiers — star membership/consensus is an external collaborator
// (spec.md §1 Non-goals); starlane only needs to compare and print keys.
type StarKey string

func (k StarKey) String() string {
	return string(k)
}

// Empty reports whether the key is unset.
func (k StarKey) Empty() bool {
	return k == ""
}
