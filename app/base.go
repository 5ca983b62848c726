package app

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock
// handlers to the storage and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder custodia.TxDecoder
	handler custodia.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(store *StoreApp, decoder custodia.TxDecoder,
	handler custodia.Handler, debug bool) BaseApp {

	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custodia.DeliverTxError(err, b.debug)
	}

	res, err := b.handler.Deliver(b.blockCtx(), b.DeliverStore(), tx)
	return custodia.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custodia.CheckTxError(err, b.debug)
	}

	res, err := b.handler.Check(b.blockCtx(), b.CheckStore(), tx)
	return custodia.CheckOrError(res, err, b.debug)
}

// loadTx parses the tx bytes, and converts any panic in the decoder
// into a normal error
func (b BaseApp) loadTx(txBytes []byte) (tx custodia.Tx, err error) {
	defer errors.Recover(&err)

	tx, err = b.decoder(txBytes)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse transaction")
	}
	return tx, nil
}
