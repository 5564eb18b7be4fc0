// Package metrics implements model.Observers as a set of Prometheus
// collectors (SPEC_FULL.md §11 "Metrics"), grounded on
// onflow-flow-go/module/metrics/consensus.go's NewXCollector(registerer)
// idiom: build the metric objects, MustRegister them against the caller's
// prometheus.Registerer, and return a struct wrapping them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

const namespace = "graphene"

// Collector is a model.Observers that turns the block pipeline's three
// signals into Prometheus series. blocks_popped_total has no dedicated
// observer hook of its own - spec §6 defines exactly the three Observers
// methods - so blockpipeline.PopBlock reports it through the separate
// PopObserver interface below instead of growing model.Observers to a
// fourth, apply-only-shaped hook.
type Collector struct {
	blocksApplied      prometheus.Counter
	blocksPopped       prometheus.Counter
	forkSwitches       prometheus.Counter
	transactionsPushed prometheus.Counter
	changedObjects     prometheus.Counter
	pendingPoolSize    prometheus.Gauge

	lastHeadBlockNum uint32
}

var _ model.Observers = (*Collector)(nil)
var _ PopObserver = (*Collector)(nil)

// PopObserver is consumed by blockpipeline.PopBlock through an optional
// type assertion on the model.Observers it was given, the same pattern the
// standard library uses for io.ReaderFrom/WriterTo: implementing it is
// opt-in, so an Observers value that only cares about the three required
// hooks needs no changes.
type PopObserver interface {
	ObserveBlockPopped()
}

// New builds a Collector and registers its series against registerer.
func New(registerer prometheus.Registerer) *Collector {
	c := &Collector{
		blocksApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_applied_total",
			Help:      "number of blocks applied to the canonical chain, including blocks applied while switching forks",
		}),
		blocksPopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_popped_total",
			Help:      "number of blocks removed from the head via PopBlock",
		}),
		forkSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fork_switches_total",
			Help:      "number of times an applied block extended a fork other than the current head's",
		}),
		transactionsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_pushed_total",
			Help:      "number of transactions accepted into the pending pool",
		}),
		changedObjects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changed_objects_total",
			Help:      "number of distinct object references touched by applied and pending transactions",
		}),
		pendingPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_pool_size",
			Help:      "number of transactions currently held in the pending pool",
		}),
	}
	registerer.MustRegister(
		c.blocksApplied,
		c.blocksPopped,
		c.forkSwitches,
		c.transactionsPushed,
		c.changedObjects,
		c.pendingPoolSize,
	)
	return c
}

// NotifyAppliedBlock implements model.Observers. Whether a fork switch just
// happened isn't part of the signal itself - telling the two cases apart at
// the caller level is out of reach here - so this collector infers it from
// the applied block's height: an extension always applies the immediate
// successor of the last-seen head, so any other height (a sibling replayed
// during applyForkSwitch, or the branch point itself) means the head moved
// sideways rather than forward by one.
func (c *Collector) NotifyAppliedBlock(block *externalapi.Block) {
	c.blocksApplied.Inc()
	height := block.Number()
	if c.lastHeadBlockNum != 0 && height != c.lastHeadBlockNum+1 {
		c.forkSwitches.Inc()
	}
	c.lastHeadBlockNum = height
}

// NotifyOnPendingTransaction implements model.Observers. pendingPoolSize is
// bumped optimistically here for immediate feedback; ObservePendingPoolSize
// corrects it to the true count whenever the pool is rebuilt and may have
// shrunk (push_block, pop_block, generate_block all drop or re-validate
// pooled transactions against a new head).
func (c *Collector) NotifyOnPendingTransaction(_ *externalapi.Transaction) {
	c.transactionsPushed.Inc()
	c.pendingPoolSize.Inc()
}

// ObservePendingPoolSize implements the optional pool-size interface
// blockpipeline.Pipeline.reportPoolSize type-asserts for, the same
// opt-in pattern PopObserver uses for blocks_popped.
func (c *Collector) ObservePendingPoolSize(size int) {
	c.pendingPoolSize.Set(float64(size))
}

// NotifyChangedObjects implements model.Observers.
func (c *Collector) NotifyChangedObjects(refs []model.ObjectRef) {
	c.changedObjects.Add(float64(len(refs)))
}

// ObserveBlockPopped implements PopObserver. PopBlock's rebuildPending
// reports the pool's true size through ObservePendingPoolSize afterwards,
// so pendingPoolSize isn't adjusted here - only the drop in blocksApplied's
// counterpart is.
func (c *Collector) ObserveBlockPopped() {
	c.blocksPopped.Inc()
	if c.lastHeadBlockNum > 0 {
		c.lastHeadBlockNum--
	}
}
