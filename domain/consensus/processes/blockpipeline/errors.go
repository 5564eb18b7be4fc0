package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

func ruleErrCheckpointMismatch(blockNum uint32, want, got externalapi.BlockID) error {
	return ruleerrors.NewErrCheckpointMismatch(blockNum, want.String(), got.String())
}
