package names

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Namehash computes the registry node for a dotted name: the rightmost
// label is hashed into the zero node first, then each label toward the
// left is folded in.
func Namehash(name string) common.Hash {
	node := make([]byte, 32)
	if name == "" {
		return common.BytesToHash(node)
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256(node, labelHash)
	}
	return common.BytesToHash(node)
}

// ReverseNode computes the node of the reverse record for an address:
// the hex address without its 0x prefix under the fixed .addr.reverse
// suffix.
func ReverseNode(addr string) common.Hash {
	hexPart := strings.TrimPrefix(strings.ToLower(addr), "0x")
	return Namehash(hexPart + ".addr.reverse")
}
