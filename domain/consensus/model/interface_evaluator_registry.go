package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// OperationEvaluator evaluates a single operation, optionally mutating
// state (spec §6 "Operation Evaluator Registry (consumed)"). Concrete
// evaluators (transfers, order placement, proposal voting, ...) are entirely
// out of scope (spec §1); this module only ever calls Evaluate.
type OperationEvaluator interface {
	Evaluate(state ObjectDatabase, op externalapi.Operation, apply bool) (externalapi.OperationResult, error)
}

// OperationEvaluatorRegistry is an indexable collection where index =
// operation tag, value = the evaluator for that tag (spec §6).
type OperationEvaluatorRegistry interface {
	// Evaluator returns the evaluator registered for tag, or nil if none is
	// registered.
	Evaluator(tag int) OperationEvaluator
}
