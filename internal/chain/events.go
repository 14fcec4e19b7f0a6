package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Vote type values emitted by the registry contract.
const (
	VoteTypeDown uint8 = 0
	VoteTypeUp   uint8 = 1
)

// Decoded event shapes. Field names follow the ABI argument names so the
// bound contract can unpack into them directly; BlockNumber is attached
// after decoding.

type ContentPublishedEvent struct {
	Author      common.Address
	Cid         string
	Community   string
	ContentType uint8
	BlockNumber uint64
}

type AttestationCreatedEvent struct {
	Attester    common.Address
	Subject     common.Address
	Reason      string
	Timestamp   *big.Int
	BlockNumber uint64
}

type AttestationRevokedEvent struct {
	Attester    common.Address
	Subject     common.Address
	BlockNumber uint64
}

type VoteCastEvent struct {
	Voter       common.Address
	Cid         string
	VoteType    uint8
	BlockNumber uint64
}

type FollowedEvent struct {
	Follower    common.Address
	Followed    common.Address
	BlockNumber uint64
}

type RegisteredEvent struct {
	Agent       common.Address
	AgentType   uint8
	BlockNumber uint64
}
