package variables

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/archlinux/archwiki-sub029/afpdata"
	"github.com/archlinux/archwiki-sub029/ipaddresses"
	"github.com/archlinux/archwiki-sub029/wiki"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const (
	recentRevisionsToScan = 100
	recentAuthorsLimit    = 10
)

// VarGetter returns the value of another variable of the same holder, computing it if needed.
type VarGetter func(name string) (afpdata.Data, error)

// Services are the collaborators the builtin computations read from.
type Services struct {
	Revisions    wiki.RevisionLookup
	EditTracker  wiki.UserEditTracker
	Options      wiki.UserOptions
	Registry     wiki.UserRegistry
	Groups       wiki.UserGroupManager
	Permissions  wiki.PermissionManager
	Blocks       wiki.BlockLookup
	Restrictions wiki.RestrictionStore
	UserNames    wiki.UserNameUtils
}

// LazyVariableComputer computes the value of lazy variables.
type LazyVariableComputer struct {
	logger   zerolog.Logger
	hooks    *Hooks
	services Services
	wikiID   string
	language language.Tag
}

// NewLazyVariableComputer creates a LazyVariableComputer. hooks may be nil.
func NewLazyVariableComputer(logger zerolog.Logger, hooks *Hooks, services Services, wikiID string, contentLanguage language.Tag) *LazyVariableComputer {
	return &LazyVariableComputer{
		logger:   logger,
		hooks:    hooks,
		services: services,
		wikiID:   wikiID,
		language: contentLanguage,
	}
}

// Compute runs the computation described by v. The holder is only read. getVar is used by computations that derive
// from other variables.
func (c *LazyVariableComputer) Compute(v *LazyLoadedVariable, holder *VariableHolder, getVar VarGetter) (afpdata.Data, error) {
	if result, ok := c.hooks.runIntercept(v.method, holder, v.parameters); ok {
		c.logger.Debug().Str("method", string(v.method)).Msg("Lazy variable supplied by intercept hook")
		return result, nil
	}

	result, ok, err := c.computeBuiltin(v, getVar)
	if err != nil {
		return afpdata.NewUndefined(), err
	}
	if ok {
		c.logger.Debug().Str("method", string(v.method)).Msg("Computed lazy variable")
		return result, nil
	}

	if result, ok := c.hooks.runCompute(v.method, holder, v.parameters); ok {
		c.logger.Debug().Str("method", string(v.method)).Msg("Lazy variable supplied by compute hook")
		return result, nil
	}

	return afpdata.NewUndefined(), &UnrecognizedMethodError{Method: string(v.method)}
}

func (c *LazyVariableComputer) computeBuiltin(v *LazyLoadedVariable, getVar VarGetter) (result afpdata.Data, ok bool, err error) {
	ok = true

	switch v.method {
	case MethodWikiName:
		result = afpdata.NewString(c.wikiID)
	case MethodWikiLanguage:
		result = afpdata.NewString(c.language.String())
	case MethodUserID:
		result, err = c.userID(v)
	case MethodUserName:
		result, err = c.userName(v)
	case MethodUserEditCount:
		result, err = c.userEditCount(v)
	case MethodUserEmailConfirm:
		result, err = c.userEmailConfirm(v)
	case MethodUserAge:
		result, err = c.userAge(v)
	case MethodUserGroups:
		result, err = c.userGroups(v)
	case MethodUserRights:
		result, err = c.userRights(v)
	case MethodUserBlock:
		result, err = c.userBlock(v)
	case MethodUserType:
		result, err = c.userType(v)
	case MethodUserUnnamedIP:
		result, err = c.userUnnamedIP(v)
	case MethodPageRestrictions:
		result, err = c.pageRestrictions(v)
	case MethodPageAge:
		result, err = c.pageAge(v)
	case MethodRevisionAge:
		result, err = c.revisionAge(v)
	case MethodFirstContributor:
		result, err = c.firstContributor(v)
	case MethodRecentContributors:
		result, err = c.recentContributors(v)
	case MethodRevisionTextByID:
		result, err = c.revisionField(v, func(r *wiki.Revision) string { return r.Text })
	case MethodContentModelByID:
		result, err = c.revisionField(v, func(r *wiki.Revision) string { return r.ContentModel })
	case MethodLength:
		result, err = c.length(v, getVar)
	case MethodSubtractInt:
		result, err = c.subtractInt(v, getVar)
	case MethodDiff:
		result, err = c.diff(v, getVar)
	case MethodDiffSplit:
		result, err = c.diffSplit(v, getVar)
	case MethodArrayDiff:
		result, err = c.arrayDiff(v, getVar)
	default:
		ok = false
	}

	return
}

func (c *LazyVariableComputer) userID(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewInt(p.user.ID), nil
}

func (c *LazyVariableComputer) userName(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewString(p.user.Name), nil
}

func (c *LazyVariableComputer) userEditCount(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	if !p.user.IsRegistered() {
		return afpdata.NewNull(), nil
	}
	n, err := c.services.EditTracker.GetUserEditCount(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewInt(n), nil
}

func (c *LazyVariableComputer) userEmailConfirm(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	if !p.user.IsRegistered() {
		return afpdata.NewBool(false), nil
	}
	confirmed, err := c.services.Options.IsEmailConfirmed(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewBool(confirmed), nil
}

func (c *LazyVariableComputer) userAge(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserAgeParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	if !p.user.IsRegistered() {
		return afpdata.NewInt(0), nil
	}
	registration, ok, err := c.services.Registry.GetRegistration(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	if !ok {
		return afpdata.NewInt(0), nil
	}
	return afpdata.NewInt(ageSeconds(p.asOf, registration)), nil
}

func (c *LazyVariableComputer) userGroups(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	groups, err := c.services.Groups.GetUserEffectiveGroups(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.FromNative(groups), nil
}

func (c *LazyVariableComputer) userRights(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	rights, err := c.services.Permissions.GetUserPermissions(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.FromNative(rights), nil
}

func (c *LazyVariableComputer) userBlock(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	blocked, err := c.services.Blocks.IsBlocked(p.user)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewBool(blocked), nil
}

func (c *LazyVariableComputer) isTemp(u wiki.User) bool {
	return c.services.UserNames != nil && c.services.UserNames.IsTemp(u.Name)
}

func (c *LazyVariableComputer) userType(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUserParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}

	var t string
	switch {
	case c.isTemp(p.user):
		t = "temp"
	case ipaddresses.IsIPAddress(p.user.Name):
		t = "ip"
	case p.user.IsRegistered():
		t = "named"
	case strings.Contains(p.user.Name, ">"):
		t = "external"
	default:
		t = "unknown"
	}
	return afpdata.NewString(t), nil
}

// userUnnamedIP exposes the request IP only for users who do not edit under an account name.
func (c *LazyVariableComputer) userUnnamedIP(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeUnnamedIPParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	if p.user.IsRegistered() && !c.isTemp(p.user) {
		return afpdata.NewString(""), nil
	}
	return afpdata.NewString(p.ip), nil
}

func (c *LazyVariableComputer) pageRestrictions(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeRestrictionParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	restrictions, err := c.services.Restrictions.GetRestrictions(p.title, p.action)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.FromNative(restrictions), nil
}

func (c *LazyVariableComputer) pageAge(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodePageAgeParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	rev, err := c.services.Revisions.GetFirstRevision(p.title)
	if err != nil {
		return afpdata.Data{}, err
	}
	if rev == nil {
		return afpdata.NewInt(0), nil
	}
	return afpdata.NewInt(ageSeconds(p.asOf, rev.Timestamp)), nil
}

func (c *LazyVariableComputer) revisionAge(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeRevisionAgeParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	rev, err := c.services.Revisions.GetRevisionByID(p.revID)
	if err != nil {
		return afpdata.Data{}, err
	}
	if rev == nil {
		return afpdata.NewInt(0), nil
	}
	return afpdata.NewInt(ageSeconds(p.asOf, rev.Timestamp)), nil
}

func (c *LazyVariableComputer) firstContributor(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeTitleParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	rev, err := c.services.Revisions.GetFirstRevision(p.title)
	if err != nil {
		return afpdata.Data{}, err
	}
	if rev == nil {
		return afpdata.NewString(""), nil
	}
	return afpdata.NewString(rev.Author), nil
}

// recentContributors lists the distinct authors of the most recent revisions, newest first.
func (c *LazyVariableComputer) recentContributors(v *LazyLoadedVariable) (afpdata.Data, error) {
	p, err := decodeTitleParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	revs, err := c.services.Revisions.GetRecentRevisions(p.title, recentRevisionsToScan)
	if err != nil {
		return afpdata.Data{}, err
	}

	seen := make(map[string]bool)
	authors := []string{}
	for _, rev := range revs {
		if seen[rev.Author] {
			continue
		}
		seen[rev.Author] = true
		authors = append(authors, rev.Author)
		if len(authors) == recentAuthorsLimit {
			break
		}
	}
	return afpdata.FromNative(authors), nil
}

func (c *LazyVariableComputer) revisionField(v *LazyLoadedVariable, field func(*wiki.Revision) string) (afpdata.Data, error) {
	p, err := decodeRevisionParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	rev, err := c.services.Revisions.GetRevisionByID(p.revID)
	if err != nil {
		return afpdata.Data{}, err
	}
	if rev == nil {
		return afpdata.NewString(""), nil
	}
	return afpdata.NewString(field(rev)), nil
}

func (c *LazyVariableComputer) length(v *LazyLoadedVariable, getVar VarGetter) (afpdata.Data, error) {
	p, err := decodeLengthParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	d, err := getVar(p.lengthVar)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewInt(int64(utf8.RuneCountInString(d.ToString()))), nil
}

func (c *LazyVariableComputer) subtractInt(v *LazyLoadedVariable, getVar VarGetter) (afpdata.Data, error) {
	p, err := decodeSubtractParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	a, err := getVar(p.val1Var)
	if err != nil {
		return afpdata.Data{}, err
	}
	b, err := getVar(p.val2Var)
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewInt(a.ToInt() - b.ToInt()), nil
}

func (c *LazyVariableComputer) diff(v *LazyLoadedVariable, getVar VarGetter) (afpdata.Data, error) {
	p, err := decodeDiffParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	oldText, err := getVar(p.oldVar)
	if err != nil {
		return afpdata.Data{}, err
	}
	newText, err := getVar(p.newVar)
	if err != nil {
		return afpdata.Data{}, err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       splitLines(oldText.ToString()),
		B:       splitLines(newText.ToString()),
		Context: 1,
	})
	if err != nil {
		return afpdata.Data{}, err
	}
	return afpdata.NewString(diff), nil
}

// diffSplit extracts the added or removed lines of a unified diff. Lines before the first hunk header are file
// headers and are skipped.
func (c *LazyVariableComputer) diffSplit(v *LazyLoadedVariable, getVar VarGetter) (afpdata.Data, error) {
	p, err := decodeDiffSplitParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	diff, err := getVar(p.diffVar)
	if err != nil {
		return afpdata.Data{}, err
	}

	lines := []string{}
	inHunk := false
	for _, line := range strings.Split(diff.ToString(), "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			continue
		}
		if inHunk && strings.HasPrefix(line, p.linePrefix) {
			lines = append(lines, line[len(p.linePrefix):])
		}
	}
	return afpdata.FromNative(lines), nil
}

func (c *LazyVariableComputer) arrayDiff(v *LazyLoadedVariable, getVar VarGetter) (afpdata.Data, error) {
	p, err := decodeArrayDiffParams(v)
	if err != nil {
		return afpdata.Data{}, err
	}
	base, err := getVar(p.baseVar)
	if err != nil {
		return afpdata.Data{}, err
	}
	minus, err := getVar(p.minusVar)
	if err != nil {
		return afpdata.Data{}, err
	}

	exclude := make(map[string]bool)
	for _, item := range minus.ToList().Items() {
		exclude[item.ToString()] = true
	}
	out := []afpdata.Data{}
	for _, item := range base.ToList().Items() {
		if !exclude[item.ToString()] {
			out = append(out, item)
		}
	}
	return afpdata.NewList(out...), nil
}

// ageSeconds returns the whole seconds between ref and asOf. Missing or future references give 0.
func ageSeconds(asOf time.Time, ref time.Time) int64 {
	if ref.IsZero() {
		return 0
	}
	d := asOf.Sub(ref)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return difflib.SplitLines(s)
}
