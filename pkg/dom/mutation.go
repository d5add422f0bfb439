package dom

// PatchOp is the type of a tree mutation.
type PatchOp uint8

const (
	PatchInsertNode PatchOp = 0x04 // Insert new node
	PatchRemoveNode PatchOp = 0x05 // Remove node
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	default:
		return "Unknown"
	}
}

// Mutation describes a single change to the connected tree.
type Mutation struct {
	Op       PatchOp // Operation type
	HID      string  // Target node's hydration ID (empty for text nodes)
	ParentID string  // Parent's hydration ID
	Index    int     // Child index at insertion or before removal
	Node     *Node   // The inserted or removed node
}
