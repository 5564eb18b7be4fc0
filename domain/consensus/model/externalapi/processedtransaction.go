package externalapi

// ProcessedTransaction is a Transaction plus the per-operation results
// produced by the apply path (spec §3).
type ProcessedTransaction struct {
	Transaction      *Transaction
	OperationResults []OperationResult
}

// PackedSize approximates the wire size of the processed transaction. It
// mirrors fc::raw::pack_size(processed_transaction) from the source this
// module is grounded on: a fixed per-transaction/per-operation overhead plus
// the size of each operation's payload and result, and the transaction's
// signatures. When the transaction carries a precomputed packed size, that
// size is returned as is, and operation results are not added to it.
func (pt *ProcessedTransaction) PackedSize() int {
	if pt == nil || pt.Transaction == nil {
		return 0
	}
	if size, ok := pt.Transaction.PrecomputedPackedSize(); ok {
		return size
	}
	const trxHeaderOverhead = 16 // ref block num/prefix + expiration
	const perOperationOverhead = 8
	const perSignatureOverhead = 65
	size := trxHeaderOverhead
	size += len(pt.Transaction.Signatures) * perSignatureOverhead
	for _, op := range pt.Transaction.Operations {
		size += perOperationOverhead + payloadSize(op.Payload)
	}
	for _, res := range pt.OperationResults {
		size += payloadSize(res.Payload)
	}
	return size
}

func payloadSize(payload interface{}) int {
	if sized, ok := payload.(interface{ PackedSize() int }); ok {
		return sized.PackedSize()
	}
	if b, ok := payload.([]byte); ok {
		return len(b)
	}
	if payload == nil {
		return 0
	}
	// Best-effort fallback for evaluator payloads that don't implement
	// PackedSize(): a fixed guess is preferable to panicking, since exact
	// operation encoding is an evaluator concern (spec §1, out of scope).
	return 32
}

// OperationHistoryEntry records one applied operation for the operation
// history buffer (spec §3 "OperationHistory").
type OperationHistoryEntry struct {
	BlockNum      uint32
	TrxInBlock    uint32
	OpInTrx       uint32
	VirtualOp     uint64
	Operation     Operation
	Result        OperationResult
}
