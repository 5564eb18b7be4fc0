// Package transactionvalidator implements model.TransactionValidator: the
// stateless-then-stateful transaction checks of spec §4.3, dispatching to
// the (out of scope) operation evaluator registry. The package is grounded
// on the shape of
// kaspanet-kaspad/domain/consensus/processes/transactionvalidator
// (a small struct constructed with New(), returning model.TransactionValidator,
// with the validation classes split across files - transaction_in_isolation
// vs transaction_in_context in the teacher, dedup/authority/tapos/expiration
// vs evaluator dispatch here) but its actual check sequence is
// db_block.cpp's _apply_transaction, which the teacher's GHOSTDAG-flavored
// validator has no equivalent of.
package transactionvalidator

import (
	"time"

	"github.com/pkg/errors"

	"github.com/discretemind/graphene-core/domain/dagconfig"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/objectdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.TRXV)
	if err != nil {
		panic(err)
	}
	return l
}

const dedupIndexByID = "by_trx_id"

// dedupEntry is the sole content of the transaction-id dedup table (spec §3
// "the transaction-id index contains exactly the transactions of committed,
// non-expired blocks in the window [now - max_ttl, now]").
type dedupEntry struct {
	ID          externalapi.TransactionID
	Expiration  time.Time
	Transaction *externalapi.Transaction
}

// Validator is the concrete model.TransactionValidator.
type Validator struct {
	params      *dagconfig.Params
	dedup       *objectdatabase.Table[dedupEntry]
	history     model.OperationHistoryStore
	evaluators  model.OperationEvaluatorRegistry
	authorities model.AuthorityResolver
	tapos       model.TaposResolver
	objectDB    model.ObjectDatabase
}

var _ model.TransactionValidator = (*Validator)(nil)

// New instantiates a Validator over db, wiring the transaction-id dedup
// table as one of its tables (spec §3 "Dedup invariant").
func New(
	params *dagconfig.Params,
	db *objectdatabase.Database,
	history model.OperationHistoryStore,
	evaluators model.OperationEvaluatorRegistry,
	authorities model.AuthorityResolver,
	tapos model.TaposResolver,
) *Validator {
	dedup := objectdatabase.NewTable[dedupEntry](db, "transaction_dedup")
	dedup.CreateIndex(dedupIndexByID, func(e dedupEntry) interface{} { return e.ID })

	return &Validator{
		params:      params,
		dedup:       dedup,
		history:     history,
		evaluators:  evaluators,
		authorities: authorities,
		tapos:       tapos,
		objectDB:    db,
	}
}

// ApplyTransaction implements model.TransactionValidator (spec §4.3).
func (v *Validator) ApplyTransaction(
	trx *externalapi.Transaction,
	skip externalapi.SkipFlags,
	headBlockNum uint32,
	headBlockTime time.Time,
	trxInBlock uint32,
) (*externalapi.ProcessedTransaction, error) {

	if err := v.validateStructure(trx); err != nil {
		return nil, err
	}

	id, ok := trx.PrecomputedID()
	if !ok {
		return nil, errors.New("transactionvalidator: transaction has no precomputed id; run the precomputer first")
	}

	if !skip.Has(externalapi.SkipTransactionDupeCheck) {
		if v.isDuplicate(id) {
			return nil, ruleerrors.ErrDuplicateTransaction
		}
	}

	if !skip.Has(externalapi.SkipTransactionSignatures) {
		if err := v.checkAuthority(trx); err != nil {
			return nil, err
		}
	}

	// Block-1 exception (spec §4.3 step 4): the genesis block has no prior
	// block to reference, so TaPoS and expiration are meaningless for it.
	if headBlockNum != 0 {
		if !skip.Has(externalapi.SkipTaposCheck) {
			if err := v.checkTapos(trx); err != nil {
				return nil, err
			}
		}
		if err := v.checkExpiration(trx, headBlockTime); err != nil {
			return nil, err
		}
	}

	if !skip.Has(externalapi.SkipTransactionDupeCheck) {
		v.dedup.Create(func(model.ObjectRef) dedupEntry {
			return dedupEntry{ID: id, Expiration: trx.Expiration, Transaction: trx}
		})
	}

	results := make([]externalapi.OperationResult, 0, len(trx.Operations))
	for opInTrx, op := range trx.Operations {
		result, err := v.dispatch(op, uint32(opInTrx), trxInBlock, headBlockNum)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return &externalapi.ProcessedTransaction{Transaction: trx, OperationResults: results}, nil
}

func (v *Validator) validateStructure(trx *externalapi.Transaction) error {
	if len(trx.Operations) == 0 {
		return ruleerrors.ErrTransactionEmpty
	}
	seen := make(map[string]bool, len(trx.Signatures))
	for _, sig := range trx.Signatures {
		key := string(sig.Key)
		if seen[key] {
			return ruleerrors.ErrDuplicateSignatures
		}
		seen[key] = true
	}
	for _, op := range trx.Operations {
		if op.Tag < 0 {
			return ruleerrors.ErrNegativeOperationTag
		}
	}
	return nil
}

func (v *Validator) isDuplicate(id externalapi.TransactionID) bool {
	for _, ref := range v.dedup.ByIndex(dedupIndexByID, id) {
		if entry, ok := v.dedup.Get(ref); ok && entry.ID == id {
			return true
		}
	}
	return false
}

// RecentTransaction implements model.TransactionValidator.
func (v *Validator) RecentTransaction(id externalapi.TransactionID) (*externalapi.Transaction, bool) {
	for _, ref := range v.dedup.ByIndex(dedupIndexByID, id) {
		if entry, ok := v.dedup.Get(ref); ok && entry.ID == id {
			return entry.Transaction, true
		}
	}
	return nil, false
}

// checkTapos implements the TaPoS prefix check alone, gated by
// SkipTaposCheck (spec §6 "a bit set suppresses the corresponding check";
// db_block.cpp:633-647 gates only this comparison on skip_tapos_check).
func (v *Validator) checkTapos(trx *externalapi.Transaction) error {
	prefix, ok := v.tapos.BlockSummaryPrefix(trx.RefBlockNum)
	if !ok || prefix != trx.RefBlockPrefix {
		return ruleerrors.ErrTaposMismatch
	}
	return nil
}

// checkExpiration implements the expiration-window check. Unlike TaPoS,
// this runs whenever there is a head block to measure against, regardless
// of SkipTaposCheck (db_block.cpp:633-647 runs these unconditionally once
// head_block_num() > 0).
func (v *Validator) checkExpiration(trx *externalapi.Transaction, headBlockTime time.Time) error {
	if trx.Expiration.Before(headBlockTime) {
		return ruleerrors.ErrTransactionExpired
	}
	if trx.Expiration.After(headBlockTime.Add(v.params.MaxTimeUntilExpiration)) {
		return ruleerrors.ErrExpirationTooFarInFuture
	}
	return nil
}

// signatureKeySet collects the pubkeys a transaction's signatures declare
// (recovered ahead of time by the precomputer), for authority satisfaction.
func signatureKeySet(trx *externalapi.Transaction) map[string]bool {
	keys := make(map[string]bool, len(trx.Signatures))
	for _, sig := range trx.Signatures {
		keys[string(sig.Key)] = true
	}
	return keys
}

func (v *Validator) checkAuthority(trx *externalapi.Transaction) error {
	provided := signatureKeySet(trx)
	required := make(map[externalapi.AccountID]bool)
	for _, op := range trx.Operations {
		for _, acc := range op.RequiredAuths {
			required[acc] = true
		}
		for _, acc := range op.RequiredOwnerAuths {
			required[acc] = true
		}
	}

	for acc := range required {
		satisfied, err := v.accountSatisfied(acc, provided, 0)
		if err != nil {
			return err
		}
		if !satisfied {
			return ruleerrors.ErrAuthorityUnsatisfied
		}
	}
	return nil
}

func (v *Validator) accountSatisfied(acc externalapi.AccountID, provided map[string]bool, depth uint32) (bool, error) {
	if depth > v.params.MaxAuthorityDepth {
		return false, ruleerrors.ErrAuthorityDepthExceeded
	}

	keys, subAccounts, threshold, err := v.authorities.ActiveKeys(acc)
	if err != nil {
		return false, err
	}

	var weight uint32
	for _, key := range keys {
		if provided[string(key)] {
			weight++
		}
	}
	for subAccount, subWeight := range subAccounts {
		ok, err := v.accountSatisfied(subAccount, provided, depth+1)
		if err != nil {
			return false, err
		}
		if ok {
			weight += subWeight
		}
	}
	return weight >= threshold, nil
}

func (v *Validator) dispatch(op externalapi.Operation, opInTrx, trxInBlock, headBlockNum uint32) (externalapi.OperationResult, error) {
	index := v.history.Push(headBlockNum, trxInBlock, opInTrx, op)

	evaluator := v.evaluators.Evaluator(op.Tag)
	if evaluator == nil {
		return externalapi.OperationResult{}, ruleerrors.NewErrNoRegisteredEvaluator(op.Tag)
	}

	result, err := evaluator.Evaluate(v.objectDB, op, true)
	if err != nil {
		return externalapi.OperationResult{}, ruleerrors.NewErrEvaluatorFailed(op.Tag, err)
	}

	v.history.SetResult(index, result)
	return result, nil
}
