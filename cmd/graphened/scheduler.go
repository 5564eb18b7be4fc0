package main

import (
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// soloScheduler is a minimal model.WitnessScheduler for standalone
// operation: a single producer is scheduled for every slot. Real witness
// scheduling (rotating a full witness set, tallying votes) is out of scope
// - this is the same role kaspad's solo-mining mode plays for a network
// with no external miner, just enough to let graphened run its consensus
// engine on its own.
type soloScheduler struct {
	producer      externalapi.ProducerID
	signingKey    []byte
	blockInterval time.Duration
	epoch         time.Time
}

func newSoloScheduler(producer externalapi.ProducerID, signingKey []byte, blockInterval time.Duration) *soloScheduler {
	return &soloScheduler{
		producer:      producer,
		signingKey:    signingKey,
		blockInterval: blockInterval,
		epoch:         time.Unix(0, 0).UTC(),
	}
}

// ScheduledWitness implements model.WitnessScheduler.
func (s *soloScheduler) ScheduledWitness(time.Time) (externalapi.ProducerID, error) {
	return s.producer, nil
}

// SlotAt implements model.WitnessScheduler.
func (s *soloScheduler) SlotAt(when time.Time) uint64 {
	if when.Before(s.epoch) {
		return 0
	}
	return uint64(when.Sub(s.epoch)/s.blockInterval) + 1
}

// SigningKey implements model.WitnessScheduler.
func (s *soloScheduler) SigningKey(producer externalapi.ProducerID) ([]byte, error) {
	if producer != s.producer {
		return nil, nil
	}
	return s.signingKey, nil
}
