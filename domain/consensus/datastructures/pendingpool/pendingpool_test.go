package pendingpool

import (
	"testing"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

func ptx(n uint32) *externalapi.ProcessedTransaction {
	return &externalapi.ProcessedTransaction{Transaction: &externalapi.Transaction{RefBlockNum: n}}
}

func TestAppendAndTransactions(t *testing.T) {
	p := New()
	p.Append(ptx(1))
	p.Append(ptx(2))

	txs := p.Transactions()
	if len(txs) != 2 {
		t.Fatalf("len(Transactions()) = %d, want 2", len(txs))
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestRemoveByIndex(t *testing.T) {
	p := New()
	p.Append(ptx(1))
	p.Append(ptx(2))
	p.Append(ptx(3))

	p.Remove(map[int]bool{1: true})

	txs := p.Transactions()
	if len(txs) != 2 {
		t.Fatalf("len(Transactions()) after Remove = %d, want 2", len(txs))
	}
	if txs[0].Transaction.RefBlockNum != 1 || txs[1].Transaction.RefBlockNum != 3 {
		t.Fatalf("Transactions() after Remove = %+v, want [1,3]", txs)
	}
}

func TestClear(t *testing.T) {
	p := New()
	p.Append(ptx(1))
	p.Clear()
	if p.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", p.Len())
	}
}
