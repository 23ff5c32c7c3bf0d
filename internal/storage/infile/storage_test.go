package infile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
)

type StorageTestSuite struct {
	suite.Suite
	cfg    *config.StorageConfig
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func (suite *StorageTestSuite) SetupTest() {
	suite.cfg = &config.StorageConfig{
		Backend:         config.BackendFile,
		FileStoragePath: filepath.Join(suite.T().TempDir(), "local_storage.json"),
	}
	suite.ctx, suite.cancel = context.WithCancel(context.Background())
	suite.wg = &sync.WaitGroup{}
}

func (suite *StorageTestSuite) open() *Storage {
	suite.wg.Add(1)
	st, err := InitStorage(suite.ctx, suite.wg, suite.cfg)
	require.NoError(suite.T(), err)
	return st
}

func (suite *StorageTestSuite) shutdown() {
	suite.cancel()
	suite.wg.Wait()
}

func TestStorageTestSuite(t *testing.T) {
	defer goleak.VerifyNone(t)
	suite.Run(t, new(StorageTestSuite))
}

func (suite *StorageTestSuite) TestRestoreAfterRestart() {
	t := suite.T()
	st := suite.open()
	ctx := context.Background()
	require.NoError(t, st.Write(ctx, "client1", storage.LastUserIDKey, "3"))
	require.NoError(t, st.Write(ctx, "client1", storage.PostsDataKey, `[{"id":1}]`))
	require.NoError(t, st.Write(ctx, "client2", storage.PostsDataKey, `[]`))
	require.NoError(t, st.Delete(ctx, "client1", storage.PostsDataKey))
	require.NoError(t, st.Write(ctx, "client2", storage.PostsDataKey, `[{"id":2}]`))
	suite.shutdown()

	suite.ctx, suite.cancel = context.WithCancel(context.Background())
	restored := suite.open()
	defer suite.shutdown()

	v, err := restored.Read(ctx, "client1", storage.LastUserIDKey)
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	_, err = restored.Read(ctx, "client1", storage.PostsDataKey)
	var notFound *storageErrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	v, err = restored.Read(ctx, "client2", storage.PostsDataKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, v)
}

func (suite *StorageTestSuite) TestDeleteAbsentDoesNotJournal() {
	t := suite.T()
	st := suite.open()
	defer suite.shutdown()
	require.NoError(t, st.Delete(context.Background(), "client1", storage.PostsDataKey))
	info, err := os.Stat(suite.cfg.FileStoragePath)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func (suite *StorageTestSuite) TestCorruptJournal() {
	t := suite.T()
	require.NoError(t, os.WriteFile(suite.cfg.FileStoragePath, []byte("not json\n"), 0644))
	suite.wg.Add(1)
	_, err := InitStorage(suite.ctx, suite.wg, suite.cfg)
	assert.Error(t, err)
	suite.wg.Done()
	suite.cancel()
}
