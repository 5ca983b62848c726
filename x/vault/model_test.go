package vault

import (
	"testing"
	"time"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/custodiatest"
)

func TestVestingMath(t *testing.T) {
	start := custodia.UnixTime(1000)

	v := Vesting{
		Metadata:    &custodia.Metadata{Schema: 1},
		Beneficiary: custodiatest.NewCondition().Address(),
		TotalAmount: 1000,
		StartTime:   start,
		Duration:    custodia.AsUnixDuration(100 * time.Second),
		Cliff:       custodia.AsUnixDuration(20 * time.Second),
	}

	cases := map[string]struct {
		Now           custodia.UnixTime
		Claimed       int64
		WantVested    int64
		WantClaimable int64
	}{
		"before the start": {
			Now: start - 10,
		},
		"before the cliff": {
			Now: start + 19,
		},
		"at the cliff": {
			Now:           start + 20,
			WantVested:    200,
			WantClaimable: 200,
		},
		"half way": {
			Now:           start + 50,
			WantVested:    500,
			WantClaimable: 500,
		},
		"half way with previous claims": {
			Now:           start + 50,
			Claimed:       200,
			WantVested:    500,
			WantClaimable: 300,
		},
		"at the end": {
			Now:           start + 100,
			WantVested:    1000,
			WantClaimable: 1000,
		},
		"long after the end": {
			Now:           start + 100000,
			Claimed:       1000,
			WantVested:    1000,
			WantClaimable: 0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			vesting := v
			vesting.ClaimedAmount = tc.Claimed
			if got := vesting.VestedAt(tc.Now); got != tc.WantVested {
				t.Fatalf("want %d vested, got %d", tc.WantVested, got)
			}
			if got := vesting.ClaimableAt(tc.Now); got != tc.WantClaimable {
				t.Fatalf("want %d claimable, got %d", tc.WantClaimable, got)
			}
		})
	}
}

func TestVestingValidate(t *testing.T) {
	beneficiary := custodiatest.NewCondition().Address()

	valid := Vesting{
		Metadata:    &custodia.Metadata{Schema: 1},
		Beneficiary: beneficiary,
		TotalAmount: 100,
		StartTime:   custodia.UnixTime(1000),
		Duration:    custodia.AsUnixDuration(time.Hour),
		Cliff:       custodia.AsUnixDuration(time.Minute),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid vesting: %+v", err)
	}

	cliffTooLong := valid
	cliffTooLong.Cliff = custodia.AsUnixDuration(2 * time.Hour)
	if err := cliffTooLong.Validate(); !ErrInvalidCliff.Is(err) {
		t.Fatalf("want invalid cliff error, got %+v", err)
	}

	overclaimed := valid
	overclaimed.ClaimedAmount = 101
	if err := overclaimed.Validate(); err == nil {
		t.Fatal("claimed above total must not validate")
	}
}

func TestConfigValidate(t *testing.T) {
	admin := custodiatest.NewCondition().Address()
	emma := custodiatest.NewCondition().Address()
	eric := custodiatest.NewCondition().Address()

	valid := Config{
		Metadata:           &custodia.Metadata{Schema: 1},
		Admin:              admin,
		EmergencySigners:   []custodia.Address{emma, eric},
		EmergencyThreshold: 2,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config: %+v", err)
	}

	duplicate := valid
	duplicate.EmergencySigners = []custodia.Address{emma, emma}
	if err := duplicate.Validate(); !ErrInvalidThreshold.Is(err) {
		t.Fatalf("want invalid threshold error, got %+v", err)
	}

	tooHigh := valid
	tooHigh.EmergencyThreshold = 3
	if err := tooHigh.Validate(); !ErrInvalidThreshold.Is(err) {
		t.Fatalf("want invalid threshold error, got %+v", err)
	}
}
