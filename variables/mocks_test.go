package variables

import (
	"testing"
	"time"

	"github.com/archlinux/archwiki-sub029/testutils"
	"github.com/archlinux/archwiki-sub029/wiki"

	"golang.org/x/text/language"
)

var (
	testNow        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testRegistered = wiki.User{ID: 42, Name: "Alice"}
	testAnon       = wiki.User{Name: "192.0.2.7"}
	testTemp       = wiki.User{ID: 7, Name: "~2024-1"}
	testTitle      = wiki.Title{Namespace: 0, DBKey: "Main_Page"}
)

func newTestManager(t *testing.T, hooks *Hooks) (*VariablesManager, *mockWiki) {
	w := newMockWiki()
	logger := testutils.NewTestLogger(t)
	computer := NewLazyVariableComputer(logger, hooks, w.services(), "enwiki", language.English)
	return NewVariablesManager(logger, NewKeywordsManager(), computer), w
}

type mockWiki struct {
	revisions     map[int64]*wiki.Revision
	firstRevision map[wiki.Title]*wiki.Revision
	recent        map[wiki.Title][]wiki.Revision
	editCounts    map[int64]int64
	confirmed     map[int64]bool
	registrations map[int64]time.Time
	groups        map[int64][]string
	rights        map[int64][]string
	blocked       map[string]bool
	restrictions  map[string][]string

	calls int
}

func newMockWiki() *mockWiki {
	first := &wiki.Revision{ID: 1, PageID: 10, Timestamp: testNow.Add(-48 * time.Hour), Author: "Founder", Text: "first", ContentModel: "wikitext"}
	return &mockWiki{
		revisions: map[int64]*wiki.Revision{
			1: first,
			2: {ID: 2, PageID: 10, Timestamp: testNow.Add(-90 * time.Second), Author: "Bob", Text: "second", ContentModel: "wikitext"},
		},
		firstRevision: map[wiki.Title]*wiki.Revision{testTitle: first},
		recent: map[wiki.Title][]wiki.Revision{
			testTitle: {
				{ID: 5, Author: "Bob"},
				{ID: 4, Author: "Carol"},
				{ID: 3, Author: "Bob"},
				{ID: 2, Author: "Dave"},
				{ID: 1, Author: "Founder"},
			},
		},
		editCounts:    map[int64]int64{42: 1234},
		confirmed:     map[int64]bool{42: true},
		registrations: map[int64]time.Time{42: testNow.Add(-time.Hour)},
		groups:        map[int64][]string{42: {"*", "user", "autoconfirmed"}, 0: {"*"}},
		rights:        map[int64][]string{42: {"edit", "move"}},
		blocked:       map[string]bool{"192.0.2.7": true},
		restrictions:  map[string][]string{"edit": {"sysop"}},
	}
}

func (w *mockWiki) services() Services {
	return Services{
		Revisions:    w,
		EditTracker:  w,
		Options:      w,
		Registry:     w,
		Groups:       w,
		Permissions:  w,
		Blocks:       w,
		Restrictions: w,
		UserNames:    w,
	}
}

func (w *mockWiki) GetRevisionByID(id int64) (*wiki.Revision, error) {
	w.calls++
	return w.revisions[id], nil
}

func (w *mockWiki) GetFirstRevision(title wiki.Title) (*wiki.Revision, error) {
	w.calls++
	return w.firstRevision[title], nil
}

func (w *mockWiki) GetRecentRevisions(title wiki.Title, limit int) ([]wiki.Revision, error) {
	w.calls++
	revs := w.recent[title]
	if len(revs) > limit {
		revs = revs[:limit]
	}
	return revs, nil
}

func (w *mockWiki) GetUserEditCount(user wiki.User) (int64, error) {
	w.calls++
	return w.editCounts[user.ID], nil
}

func (w *mockWiki) IsEmailConfirmed(user wiki.User) (bool, error) {
	w.calls++
	return w.confirmed[user.ID], nil
}

func (w *mockWiki) GetRegistration(user wiki.User) (time.Time, bool, error) {
	w.calls++
	r, ok := w.registrations[user.ID]
	return r, ok, nil
}

func (w *mockWiki) GetUserEffectiveGroups(user wiki.User) ([]string, error) {
	w.calls++
	return w.groups[user.ID], nil
}

func (w *mockWiki) GetUserPermissions(user wiki.User) ([]string, error) {
	w.calls++
	return w.rights[user.ID], nil
}

func (w *mockWiki) IsBlocked(user wiki.User) (bool, error) {
	w.calls++
	return w.blocked[user.Name], nil
}

func (w *mockWiki) GetRestrictions(title wiki.Title, action string) ([]string, error) {
	w.calls++
	return w.restrictions[action], nil
}

func (w *mockWiki) IsTemp(name string) bool { return len(name) > 0 && name[0] == '~' }
