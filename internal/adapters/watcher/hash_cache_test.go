package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/chore/internal/adapters/watcher"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func installCommand() domain.Command {
	manifest := domain.NewInternedStrings([]string{"requirements.txt"})
	return domain.Command{
		Name:     domain.NewInternedString("install"),
		Steps:    []domain.Step{{Argv: []string{"pip", "install", "-r", "requirements.txt"}}},
		Requires: manifest,
		Inputs:   manifest,
	}
}

func TestHashCache_Changed(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHasher := mocks.NewMockHasher(ctrl)
	cache := watcher.NewHashCache(mockHasher)
	cmds := []domain.Command{installCommand()}

	gomock.InOrder(
		mockHasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), "/project").Return("h1", nil),
		mockHasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), "/project").Return("h1", nil),
		mockHasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), "/project").Return("h2", nil),
	)

	assert.True(t, cache.Changed(cmds, "/project"), "the first hash is a change")
	assert.False(t, cache.Changed(cmds, "/project"), "same content")
	assert.True(t, cache.Changed(cmds, "/project"), "new content")

	hash, ok := cache.Hash("install")
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)
}

func TestHashCache_HashFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHasher := mocks.NewMockHasher(ctrl)
	cache := watcher.NewHashCache(mockHasher)
	cmds := []domain.Command{installCommand()}

	mockHasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("h1", nil)
	mockHasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("", domain.ErrInputNotFound)

	cache.Changed(cmds, "/project")
	assert.True(t, cache.Changed(cmds, "/project"), "a deleted input is a change")

	_, ok := cache.Hash("install")
	assert.False(t, ok)
}

func TestHashCache_CommandsWithoutInputs(t *testing.T) {
	cache := watcher.NewHashCache(mocks.NewMockHasher(gomock.NewController(t)))

	clean := domain.Command{Name: domain.NewInternedString("clean")}
	assert.False(t, cache.Changed([]domain.Command{clean}, "/project"), "nothing is watched")

	experiments := domain.Command{
		Name:     domain.NewInternedString("experiments"),
		Requires: domain.NewInternedStrings([]string{"experiments.py"}),
	}
	assert.True(t, cache.Changed([]domain.Command{experiments}, "/project"))
}
