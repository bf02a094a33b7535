// Package migrationid derives the 32-byte identifier that names one
// cross-chain migration attempt. The byte layout mirrors the packing done in
// assembly by the on-chain migrator, so both sides derive the same id from
// the same inputs without coordination:
//
//	[0:4)   source chain id (uint32, big endian)
//	[4:24)  migrator contract address
//	[24:25) migration method
//	[25:32) nonce (56 bits, big endian)
package migrationid

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/liqshift/liqshift-go/model"
)

// NonceMask keeps the low 56 bits of a nonce, matching the on-chain layout.
const NonceMask = uint64(0x00FFFFFFFFFFFFFF)

// ID is a 32-byte migration identifier.
type ID [32]byte

func (id ID) Hash() common.Hash { return common.Hash(id) }

func (id ID) Hex() string { return common.Hash(id).Hex() }

// Derive packs the four inputs into an ID. Out-of-range inputs are masked,
// not rejected: a chain id above 32 bits or a nonce above 56 bits silently
// truncates, exactly as the on-chain routine does.
func Derive(sourceChainID uint64, migrator common.Address, method model.MigrationMethod, nonce uint64) ID {
	var id ID
	binary.BigEndian.PutUint32(id[0:4], uint32(sourceChainID))
	copy(id[4:24], migrator[:])
	id[24] = byte(method)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce&NonceMask)
	copy(id[25:32], nonceBytes[1:])
	return id
}

// Fields are the masked components recovered from an ID.
type Fields struct {
	SourceChainID uint32
	Migrator      common.Address
	Method        model.MigrationMethod
	Nonce         uint64
}

// Parse extracts the packed components. It is the exact inverse of Derive
// over masked inputs.
func Parse(id ID) Fields {
	var nonceBytes [8]byte
	copy(nonceBytes[1:], id[25:32])
	return Fields{
		SourceChainID: binary.BigEndian.Uint32(id[0:4]),
		Migrator:      common.BytesToAddress(id[4:24]),
		Method:        model.MigrationMethod(id[24]),
		Nonce:         binary.BigEndian.Uint64(nonceBytes[:]),
	}
}

// WithdrawalSlots returns the three consecutive storage slots where the
// destination settler records a withdrawable entry for id. The offset is
// keccak256(id ++ uint256(baseSlot)), the standard mapping-slot derivation.
func WithdrawalSlots(id ID, baseSlot uint64) [3]common.Hash {
	var slotWord [32]byte
	binary.BigEndian.PutUint64(slotWord[24:], baseSlot)
	base := crypto.Keccak256Hash(id[:], slotWord[:])

	var slots [3]common.Hash
	offset := base.Big()
	for i := range slots {
		slots[i] = common.BigToHash(offset)
		offset.Add(offset, common.Big1)
	}
	return slots
}
