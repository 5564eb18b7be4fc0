package consensus

import "github.com/discretemind/graphene-core/infrastructure/logger"

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.CNSS)
	if err != nil {
		panic(err)
	}
	return l
}
