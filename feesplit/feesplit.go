// Package feesplit divides a bridged output amount between the recipient,
// the protocol, and the migration sender.
package feesplit

import (
	"math/big"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

const bpsDenominator = 10_000

// Split is the result of dividing one bridged output. The three parts sum to
// the bridged output exactly: NetAvailable absorbs all rounding remainders.
type Split struct {
	NetAvailable *big.Int
	ProtocolFee  *big.Int
	SenderFee    *big.Int
}

// Policy carries the fee shares applied at settlement. Both bps shares are
// taken of the bridged output itself, never of the net amount; the protocol
// additionally takes protocolShareOfSenderFeePct percent out of the sender's
// share.
type Policy struct {
	SenderShareBps              uint16
	ProtocolShareBps            uint16
	ProtocolShareOfSenderFeePct uint8
}

func (p Policy) Validate() error {
	if p.SenderShareBps > bpsDenominator {
		return ngerr.Newf(ngerr.KindBound, "sender share %d bps exceeds 10000", p.SenderShareBps)
	}
	if p.ProtocolShareBps > bpsDenominator {
		return ngerr.Newf(ngerr.KindBound, "protocol share %d bps exceeds 10000", p.ProtocolShareBps)
	}
	if int(p.SenderShareBps)+int(p.ProtocolShareBps) > bpsDenominator {
		return ngerr.Newf(ngerr.KindBound, "combined fee shares %d bps exceed 10000",
			int(p.SenderShareBps)+int(p.ProtocolShareBps))
	}
	if p.ProtocolShareOfSenderFeePct > 100 {
		return ngerr.Newf(ngerr.KindBound, "protocol share of sender fee %d%% exceeds 100", p.ProtocolShareOfSenderFeePct)
	}
	return nil
}

// Apply splits bridgedOutput according to the policy. bridgedOutput must be
// non-negative; the conservation invariant
// NetAvailable + ProtocolFee + SenderFee == bridgedOutput holds exactly.
func Apply(bridgedOutput *big.Int, policy Policy) (Split, error) {
	if bridgedOutput == nil || bridgedOutput.Sign() < 0 {
		return Split{}, ngerr.New(ngerr.KindValidation, "bridged output must be non-negative")
	}
	if err := policy.Validate(); err != nil {
		return Split{}, err
	}

	denominator := big.NewInt(bpsDenominator)
	senderGross := new(big.Int).Mul(bridgedOutput, big.NewInt(int64(policy.SenderShareBps)))
	senderGross.Div(senderGross, denominator)

	protocolFromSender := new(big.Int).Mul(senderGross, big.NewInt(int64(policy.ProtocolShareOfSenderFeePct)))
	protocolFromSender.Div(protocolFromSender, big.NewInt(100))

	protocolFee := new(big.Int).Mul(bridgedOutput, big.NewInt(int64(policy.ProtocolShareBps)))
	protocolFee.Div(protocolFee, denominator)
	protocolFee.Add(protocolFee, protocolFromSender)

	senderFee := new(big.Int).Sub(senderGross, protocolFromSender)

	net := new(big.Int).Sub(bridgedOutput, protocolFee)
	net.Sub(net, senderFee)

	return Split{NetAvailable: net, ProtocolFee: protocolFee, SenderFee: senderFee}, nil
}
