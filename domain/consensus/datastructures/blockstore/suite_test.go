package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// storeSuite exercises the leveldb-backed Store across a shared fixture,
// grounded on
// goodnatureofminers-blockinsight7000-backend/internal/utxo/repository/clickhouse/repository_integration_test.go's
// use of testify/suite for setup/teardown around a real on-disk database,
// the one place in the pack that reaches for testify/suite rather than
// plain table-driven tests.
type storeSuite struct {
	suite.Suite
	store *Store
}

func (s *storeSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "blocks"))
	s.Require().NoError(err)
	s.store = store
}

func (s *storeSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *storeSuite) TestStoreAndFetchByNumber() {
	block, id := testBlock(s.T(), 42)
	s.Require().NoError(s.store.Store(id, block))

	got, err := s.store.FetchByNumber(block.Number())
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(block.Producer, got.Producer)
}

func (s *storeSuite) TestFetchOptionalMissingReturnsNil() {
	got, err := s.store.FetchOptional(externalapi.NewBlockID(1, []byte{0}))
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *storeSuite) TestContainsAfterStore() {
	block, id := testBlock(s.T(), 43)
	s.Require().NoError(s.store.Store(id, block))

	contains, err := s.store.Contains(id)
	s.Require().NoError(err)
	s.True(contains)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}
