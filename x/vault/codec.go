package vault

import (
	"fmt"

	"github.com/iov-one/custodia"
)

// Config holds the vault settings. Emergency signers can together
// release a lock before its time once the threshold of them approved.
type Config struct {
	Metadata         *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin            custodia.Address   `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	EmergencySigners []custodia.Address `protobuf:"bytes,3,rep,name=emergency_signers,json=emergencySigners,proto3,casttype=github.com/iov-one/custodia.Address" json:"emergency_signers,omitempty"`
	// EmergencyThreshold is how many distinct emergency signers must
	// approve before an early release.
	EmergencyThreshold uint32 `protobuf:"varint,4,opt,name=emergency_threshold,json=emergencyThreshold,proto3" json:"emergency_threshold,omitempty"`
}

func (c *Config) Reset()         { *c = Config{} }
func (c *Config) String() string { return fmt.Sprintf("Config<%d emergency signers>", len(c.EmergencySigners)) }
func (*Config) ProtoMessage()    {}

func (c *Config) GetMetadata() *custodia.Metadata {
	if c == nil {
		return nil
	}
	return c.Metadata
}

// Lock is a deposit that cannot be claimed back before its release time.
type Lock struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    custodia.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/custodia.Address" json:"owner,omitempty"`
	Amount   int64              `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Memo     string             `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
	LockedAt custodia.UnixTime  `protobuf:"varint,5,opt,name=locked_at,json=lockedAt,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"locked_at,omitempty"`
	UnlockAt custodia.UnixTime  `protobuf:"varint,6,opt,name=unlock_at,json=unlockAt,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"unlock_at,omitempty"`
	// Claimed is terminal. A claimed lock cannot be released again.
	Claimed bool `protobuf:"varint,7,opt,name=claimed,proto3" json:"claimed,omitempty"`
	// EmergencyApprovals is the set of emergency signers that approved
	// an early release of this lock.
	EmergencyApprovals []custodia.Address `protobuf:"bytes,8,rep,name=emergency_approvals,json=emergencyApprovals,proto3,casttype=github.com/iov-one/custodia.Address" json:"emergency_approvals,omitempty"`
}

func (l *Lock) Reset()         { *l = Lock{} }
func (l *Lock) String() string { return fmt.Sprintf("Lock<%s %d>", l.Owner, l.Amount) }
func (*Lock) ProtoMessage()    {}

func (l *Lock) GetMetadata() *custodia.Metadata {
	if l == nil {
		return nil
	}
	return l.Metadata
}

// Vesting is a schedule releasing funds linearly to a beneficiary over a
// duration, with nothing claimable before the cliff.
type Vesting struct {
	Metadata      *custodia.Metadata    `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Beneficiary   custodia.Address      `protobuf:"bytes,2,opt,name=beneficiary,proto3,casttype=github.com/iov-one/custodia.Address" json:"beneficiary,omitempty"`
	TotalAmount   int64                 `protobuf:"varint,3,opt,name=total_amount,json=totalAmount,proto3" json:"total_amount,omitempty"`
	ClaimedAmount int64                 `protobuf:"varint,4,opt,name=claimed_amount,json=claimedAmount,proto3" json:"claimed_amount,omitempty"`
	StartTime     custodia.UnixTime     `protobuf:"varint,5,opt,name=start_time,json=startTime,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"start_time,omitempty"`
	Duration      custodia.UnixDuration `protobuf:"varint,6,opt,name=duration,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"duration,omitempty"`
	Cliff         custodia.UnixDuration `protobuf:"varint,7,opt,name=cliff,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"cliff,omitempty"`
}

func (v *Vesting) Reset()         { *v = Vesting{} }
func (v *Vesting) String() string { return fmt.Sprintf("Vesting<%s %d/%d>", v.Beneficiary, v.ClaimedAmount, v.TotalAmount) }
func (*Vesting) ProtoMessage()    {}

func (v *Vesting) GetMetadata() *custodia.Metadata {
	if v == nil {
		return nil
	}
	return v.Metadata
}
