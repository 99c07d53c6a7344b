package vardump

import (
	"errors"
	"testing"

	"github.com/archlinux/archwiki-sub029/blobstore"
	"github.com/archlinux/archwiki-sub029/testutils"
	"github.com/archlinux/archwiki-sub029/variables"
	"github.com/archlinux/archwiki-sub029/wiki"

	"golang.org/x/text/language"
)

var testProtectedVars = []string{"user_unnamed_ip", "other_protected_variable"}

func newTestBlobStore(t *testing.T) (*VariablesBlobStore, *blobstore.MemoryStore, *mockAccessLogger) {
	logger := testutils.NewTestLogger(t)
	computer := variables.NewLazyVariableComputer(logger, nil, variables.Services{}, "enwiki", language.English)
	manager := variables.NewVariablesManager(logger, variables.NewKeywordsManager("other_protected_variable"), computer)
	blobs := blobstore.NewMemoryStore(logger)
	accessLogger := &mockAccessLogger{}
	return NewVariablesBlobStore(logger, manager, blobs, accessLogger, testProtectedVars), blobs, accessLogger
}

type mockAccessLogger struct {
	viewers []string
	vars    [][]string
}

func (l *mockAccessLogger) LogProtectedVarsAccess(viewer string, vars []string) {
	l.viewers = append(l.viewers, viewer)
	l.vars = append(l.vars, vars)
}

type mockAuthority struct {
	name    string
	allowed map[string]bool
}

func (a *mockAuthority) Name() string { return a.name }

func (a *mockAuthority) CanViewProtectedVariables(names []string) bool {
	for _, name := range names {
		if !a.allowed[name] {
			return false
		}
	}
	return true
}

type failingBlobStore struct{}

func (s *failingBlobStore) StoreBlob(data []byte) (string, error) {
	return "", errors.New("disk full")
}

func (s *failingBlobStore) GetBlob(address string) ([]byte, error) {
	return nil, wiki.ErrBlobNotFound
}

type corruptBlobStore struct {
	data []byte
}

func (s *corruptBlobStore) StoreBlob(data []byte) (string, error) {
	return blobstore.Address(data), nil
}

func (s *corruptBlobStore) GetBlob(address string) ([]byte, error) {
	return s.data, nil
}

func strPtr(s string) *string {
	return &s
}
