package std

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/x/gov"
	"github.com/iov-one/custodia/x/sigs"
)

func TestTxGetMsg(t *testing.T) {
	tx := &Tx{}
	_, err := tx.GetMsg()
	require.Error(t, err, "an empty transaction carries no message")

	tx.VoteMsg = &gov.VoteMsg{
		Metadata:   &custodia.Metadata{Schema: 1},
		ProposalID: []byte("00000001"),
		VoteFor:    true,
	}
	msg, err := tx.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, "gov/vote", msg.Path())
}

func TestTxDecoderRoundTrip(t *testing.T) {
	tx := &Tx{
		VoteMsg: &gov.VoteMsg{
			Metadata:   &custodia.Metadata{Schema: 1},
			ProposalID: []byte("00000001"),
			VoteFor:    true,
		},
	}
	bz, err := proto.Marshal(tx)
	require.NoError(t, err)

	parsed, err := TxDecoder(bz)
	require.NoError(t, err)
	msg, err := parsed.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, "gov/vote", msg.Path())
}

func TestSignBytesExcludeSignatures(t *testing.T) {
	tx := &Tx{
		VoteMsg: &gov.VoteMsg{
			Metadata:   &custodia.Metadata{Schema: 1},
			ProposalID: []byte("00000001"),
		},
	}
	unsigned, err := tx.GetSignBytes()
	require.NoError(t, err)

	tx.Signatures = []*sigs.StdSignature{{Sequence: 4}}
	signed, err := tx.GetSignBytes()
	require.NoError(t, err)

	assert.Equal(t, unsigned, signed)
	assert.Len(t, tx.Signatures, 1, "signatures must be restored")
}
