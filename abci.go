package custodia

import (
	"fmt"

	"github.com/iov-one/custodia/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// DeliverOrError returns an abci response for DeliverTx,
// converting the error message if present, or using the successful
// DeliverResult.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns an abci response for CheckTx,
// converting the error message if present, or using the successful
// CheckResult.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError converts any error into an abci response for DeliverTx.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	clean := errors.Redact(err)
	log := "cannot deliver tx"
	if debug {
		log = fmt.Sprintf("%+v", err)
	}
	return abci.ResponseDeliverTx{
		Code: errors.Code(clean),
		Log:  log,
	}
}

// CheckTxError converts any error into an abci response for CheckTx.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	clean := errors.Redact(err)
	log := "cannot check tx"
	if debug {
		log = fmt.Sprintf("%+v", err)
	}
	return abci.ResponseCheckTx{
		Code: errors.Code(clean),
		Log:  log,
	}
}

// ToABCI converts our internal result into the abci framework type.
func (d *DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		GasUsed: d.GasUsed,
		Tags:    d.Tags,
	}
}

// ToABCI converts our internal result into the abci framework type.
func (c *CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}
