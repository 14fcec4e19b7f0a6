package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeAttestationsRevocation(t *testing.T) {
	stream := []Attestation{
		{Attester: "0xA", Subject: "0xB", Active: true, Timestamp: 1},
		{Attester: "0xB", Subject: "0xC", Active: true, Timestamp: 2},
		{Attester: "0xB", Subject: "0xC", Active: false, Timestamp: 3}, // revoked
		{Attester: "0xC", Subject: "0xD", Active: true, Timestamp: 4},
	}
	active := ComposeAttestations(stream)
	require.Len(t, active, 2)
	assert.Equal(t, "0xa", active[0].Attester)
	assert.Equal(t, "0xb", active[0].Subject)
	assert.Equal(t, "0xc", active[1].Attester)
}

func TestComposeAttestationsReCreation(t *testing.T) {
	stream := []Attestation{
		{Attester: "0xB", Subject: "0xC", Active: true, Timestamp: 1},
		{Attester: "0xB", Subject: "0xC", Active: false, Timestamp: 2},
		{Attester: "0xB", Subject: "0xC", Active: true, Timestamp: 3, Reason: "again"},
	}
	active := ComposeAttestations(stream)
	require.Len(t, active, 1)
	assert.Equal(t, "again", active[0].Reason)
	assert.Equal(t, int64(3), active[0].Timestamp)
}

func TestComposeAttestationsCaseInsensitive(t *testing.T) {
	stream := []Attestation{
		{Attester: "0xAB", Subject: "0xCD", Active: true},
		{Attester: "0xab", Subject: "0xcd", Active: false},
	}
	assert.Empty(t, ComposeAttestations(stream))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeAddress("  0xABCdef "))
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("0x"+strings.Repeat("a", 40)))
	assert.True(t, IsAddress("0x"+strings.Repeat("A", 40)))
	assert.False(t, IsAddress("0x"+strings.Repeat("a", 39)))
	assert.False(t, IsAddress(strings.Repeat("a", 42)))
	assert.False(t, IsAddress("0x"+strings.Repeat("g", 40)))
	assert.False(t, IsAddress(""))
}

func TestIsBasename(t *testing.T) {
	assert.True(t, IsBasename("alice.base.eth"))
	assert.True(t, IsBasename("Alice-2.base.eth"))
	assert.False(t, IsBasename("alice.eth"))
	assert.False(t, IsBasename("al ice.base.eth"))
	assert.False(t, IsBasename(".base.eth"))
	assert.False(t, IsBasename(""))
}
