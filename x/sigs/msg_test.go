package sigs

import (
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

func TestBumpSequenceMsgValidate(t *testing.T) {
	cases := map[string]struct {
		Msg     BumpSequenceMsg
		WantErr *errors.Error
	}{
		"valid": {
			Msg: BumpSequenceMsg{
				Metadata:  &custodia.Metadata{Schema: 1},
				Increment: 1,
			},
		},
		"highest allowed increment": {
			Msg: BumpSequenceMsg{
				Metadata:  &custodia.Metadata{Schema: 1},
				Increment: maxSequenceIncrement,
			},
		},
		"zero increment": {
			Msg: BumpSequenceMsg{
				Metadata: &custodia.Metadata{Schema: 1},
			},
			WantErr: errors.ErrMsg,
		},
		"increment too big": {
			Msg: BumpSequenceMsg{
				Metadata:  &custodia.Metadata{Schema: 1},
				Increment: maxSequenceIncrement + 1,
			},
			WantErr: errors.ErrMsg,
		},
		"missing metadata": {
			Msg:     BumpSequenceMsg{Increment: 1},
			WantErr: errors.ErrMetadata,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.Msg.Validate(); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
