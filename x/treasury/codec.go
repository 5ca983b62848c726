package treasury

import (
	"fmt"

	"github.com/iov-one/custodia"
)

// Config holds the treasury settings: the administrator allowed to manage
// the signer set and the multi-signature policy for withdrawals.
type Config struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin    custodia.Address   `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	// Threshold is the number of distinct signer approvals a withdrawal
	// needs before it can be executed.
	Threshold uint32 `protobuf:"varint,3,opt,name=threshold,proto3" json:"threshold,omitempty"`
	// Signers are the accounts that may propose, approve and execute
	// withdrawals.
	Signers []custodia.Address `protobuf:"bytes,4,rep,name=signers,proto3,casttype=github.com/iov-one/custodia.Address" json:"signers,omitempty"`
}

func (c *Config) Reset()         { *c = Config{} }
func (c *Config) String() string { return fmt.Sprintf("Config<%d of %d>", c.Threshold, len(c.Signers)) }
func (*Config) ProtoMessage()    {}

func (c *Config) GetMetadata() *custodia.Metadata {
	if c == nil {
		return nil
	}
	return c.Metadata
}

// Balance is the single pooled balance of the treasury.
type Balance struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Total    int64              `protobuf:"varint,2,opt,name=total,proto3" json:"total,omitempty"`
}

func (b *Balance) Reset()         { *b = Balance{} }
func (b *Balance) String() string { return fmt.Sprintf("Balance<%d>", b.Total) }
func (*Balance) ProtoMessage()    {}

func (b *Balance) GetMetadata() *custodia.Metadata {
	if b == nil {
		return nil
	}
	return b.Metadata
}

// Transaction is a pending or executed withdrawal proposal.
type Transaction struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	To       custodia.Address   `protobuf:"bytes,2,opt,name=to,proto3,casttype=github.com/iov-one/custodia.Address" json:"to,omitempty"`
	Amount   int64              `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Memo     string             `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
	// Approvals is the set of signers that approved this withdrawal.
	Approvals []custodia.Address `protobuf:"bytes,5,rep,name=approvals,proto3,casttype=github.com/iov-one/custodia.Address" json:"approvals,omitempty"`
	Executed  bool               `protobuf:"varint,6,opt,name=executed,proto3" json:"executed,omitempty"`
	CreatedAt custodia.UnixTime  `protobuf:"varint,7,opt,name=created_at,json=createdAt,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"created_at,omitempty"`
	Proposer  custodia.Address   `protobuf:"bytes,8,opt,name=proposer,proto3,casttype=github.com/iov-one/custodia.Address" json:"proposer,omitempty"`
}

func (t *Transaction) Reset()         { *t = Transaction{} }
func (t *Transaction) String() string { return fmt.Sprintf("Transaction<%d to %s>", t.Amount, t.To) }
func (*Transaction) ProtoMessage()    {}

func (t *Transaction) GetMetadata() *custodia.Metadata {
	if t == nil {
		return nil
	}
	return t.Metadata
}
