package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/migrationid"
	"github.com/liqshift/liqshift-go/model"
)

// WithdrawalLookup reads a settler's claimable-withdrawal record straight
// out of contract storage, without an ABI surface on the settler.
type WithdrawalLookup struct {
	backend  Backend
	settler  common.Address
	baseSlot uint64
}

func NewWithdrawalLookup(backend Backend, settler common.Address, baseSlot uint64) *WithdrawalLookup {
	return &WithdrawalLookup{backend: backend, settler: settler, baseSlot: baseSlot}
}

// Lookup reads the three record slots derived from id. A zero recipient
// word means the entry is absent or already withdrawn and returns nil.
func (l *WithdrawalLookup) Lookup(ctx context.Context, id migrationid.ID) (*model.Withdrawal, error) {
	slots := migrationid.WithdrawalSlots(id, l.baseSlot)

	var words [3][]byte
	for i, slot := range slots {
		word, err := l.backend.StorageAt(ctx, l.settler, slot, nil)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindCollaborator, "read withdrawal storage slot", err)
		}
		words[i] = word
	}

	recipient := common.BytesToAddress(words[0])
	if recipient == (common.Address{}) {
		return nil, nil
	}
	return &model.Withdrawal{
		Recipient: recipient,
		Token:     common.BytesToAddress(words[1]),
		Amount:    new(big.Int).SetBytes(words[2]),
	}, nil
}
