package variables

import (
	"fmt"
	"time"

	"github.com/archlinux/archwiki-sub029/wiki"
)

// Method names a computation of a lazy variable.
type Method string

// Builtin computations.
const (
	MethodWikiName           Method = "get-wiki-name"
	MethodWikiLanguage       Method = "get-wiki-language"
	MethodUserID             Method = "user-id"
	MethodUserName           Method = "user-name"
	MethodUserEditCount      Method = "user-editcount"
	MethodUserEmailConfirm   Method = "user-emailconfirm"
	MethodUserAge            Method = "user-age"
	MethodUserGroups         Method = "user-group-memberships"
	MethodUserRights         Method = "user-rights"
	MethodUserBlock          Method = "user-block"
	MethodUserType           Method = "user-type"
	MethodUserUnnamedIP      Method = "user-unnamed-ip"
	MethodPageRestrictions   Method = "get-page-restrictions"
	MethodPageAge            Method = "page-age"
	MethodRevisionAge        Method = "revision-age"
	MethodFirstContributor   Method = "page-first-contributor"
	MethodRecentContributors Method = "load-recent-authors"
	MethodRevisionTextByID   Method = "revision-text-by-id"
	MethodContentModelByID   Method = "content-model-by-id"
	MethodLength             Method = "length"
	MethodSubtractInt        Method = "subtract-int"
	MethodDiff               Method = "diff"
	MethodDiffSplit          Method = "diff-split"
	MethodArrayDiff          Method = "array-diff"
)

// Computations that read from the database. ComputeDBVars resolves exactly these.
var dbMethods = map[Method]bool{
	MethodUserEditCount:      true,
	MethodUserEmailConfirm:   true,
	MethodUserAge:            true,
	MethodUserGroups:         true,
	MethodUserRights:         true,
	MethodUserBlock:          true,
	MethodPageRestrictions:   true,
	MethodPageAge:            true,
	MethodRevisionAge:        true,
	MethodFirstContributor:   true,
	MethodRecentContributors: true,
	MethodRevisionTextByID:   true,
	MethodContentModelByID:   true,
}

// IsDBMethod tells whether the computation reads from the database.
func IsDBMethod(m Method) bool {
	return dbMethods[m]
}

type userParams struct {
	user wiki.User
}

type userAgeParams struct {
	user wiki.User
	asOf time.Time
}

type unnamedIPParams struct {
	user wiki.User
	ip   string
}

type restrictionParams struct {
	title  wiki.Title
	action string
}

type titleParams struct {
	title wiki.Title
}

type pageAgeParams struct {
	title wiki.Title
	asOf  time.Time
}

type revisionParams struct {
	revID int64
}

type revisionAgeParams struct {
	revID int64
	asOf  time.Time
}

type lengthParams struct {
	lengthVar string
}

type subtractParams struct {
	val1Var string
	val2Var string
}

type diffParams struct {
	oldVar string
	newVar string
}

type diffSplitParams struct {
	diffVar    string
	linePrefix string
}

type arrayDiffParams struct {
	baseVar  string
	minusVar string
}

// paramReader decodes the untyped parameter bag of a descriptor. The first failure is kept in err and later reads
// become no-ops, so a decoder can read all fields and check once.
type paramReader struct {
	method Method
	params map[string]interface{}
	err    error
}

func newParamReader(v *LazyLoadedVariable) *paramReader {
	return &paramReader{method: v.method, params: v.parameters}
}

func (r *paramReader) fail(name string, format string, args ...interface{}) {
	if r.err == nil {
		r.err = &InvalidParameterError{Method: string(r.method), Parameter: name, Reason: fmt.Sprintf(format, args...)}
	}
}

func (r *paramReader) get(name string) (interface{}, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.params[name]
	if !ok {
		r.fail(name, "missing")
	}
	return v, ok
}

func (r *paramReader) user(name string) (u wiki.User) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch v := v.(type) {
	case wiki.User:
		u = v
	case *wiki.User:
		if v == nil {
			r.fail(name, "nil user")
			return
		}
		u = *v
	default:
		r.fail(name, "expected wiki.User, got %T", v)
	}
	return
}

func (r *paramReader) title(name string) (t wiki.Title) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch v := v.(type) {
	case wiki.Title:
		t = v
	case *wiki.Title:
		if v == nil {
			r.fail(name, "nil title")
			return
		}
		t = *v
	default:
		r.fail(name, "expected wiki.Title, got %T", v)
	}
	return
}

func (r *paramReader) str(name string) (s string) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	s, ok = v.(string)
	if !ok {
		r.fail(name, "expected string, got %T", v)
	}
	return
}

func (r *paramReader) integer(name string) (n int64) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	default:
		r.fail(name, "expected integer, got %T", v)
	}
	return
}

// timestamp accepts a time.Time or unix seconds.
func (r *paramReader) timestamp(name string) (t time.Time) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch v := v.(type) {
	case time.Time:
		t = v
	case int64:
		t = time.Unix(v, 0)
	case int:
		t = time.Unix(int64(v), 0)
	default:
		r.fail(name, "expected time.Time or unix seconds, got %T", v)
	}
	return
}

func decodeUserParams(v *LazyLoadedVariable) (p userParams, err error) {
	r := newParamReader(v)
	p.user = r.user("user")
	return p, r.err
}

func decodeUserAgeParams(v *LazyLoadedVariable) (p userAgeParams, err error) {
	r := newParamReader(v)
	p.user = r.user("user")
	p.asOf = r.timestamp("asof")
	return p, r.err
}

func decodeUnnamedIPParams(v *LazyLoadedVariable) (p unnamedIPParams, err error) {
	r := newParamReader(v)
	p.user = r.user("user")
	p.ip = r.str("ip")
	return p, r.err
}

func decodeRestrictionParams(v *LazyLoadedVariable) (p restrictionParams, err error) {
	r := newParamReader(v)
	p.title = r.title("title")
	p.action = r.str("action")
	return p, r.err
}

func decodeTitleParams(v *LazyLoadedVariable) (p titleParams, err error) {
	r := newParamReader(v)
	p.title = r.title("title")
	return p, r.err
}

func decodePageAgeParams(v *LazyLoadedVariable) (p pageAgeParams, err error) {
	r := newParamReader(v)
	p.title = r.title("title")
	p.asOf = r.timestamp("asof")
	return p, r.err
}

func decodeRevisionParams(v *LazyLoadedVariable) (p revisionParams, err error) {
	r := newParamReader(v)
	p.revID = r.integer("revid")
	return p, r.err
}

func decodeRevisionAgeParams(v *LazyLoadedVariable) (p revisionAgeParams, err error) {
	r := newParamReader(v)
	p.revID = r.integer("revid")
	p.asOf = r.timestamp("asof")
	return p, r.err
}

func decodeLengthParams(v *LazyLoadedVariable) (p lengthParams, err error) {
	r := newParamReader(v)
	p.lengthVar = r.str("length-var")
	return p, r.err
}

func decodeSubtractParams(v *LazyLoadedVariable) (p subtractParams, err error) {
	r := newParamReader(v)
	p.val1Var = r.str("val1-var")
	p.val2Var = r.str("val2-var")
	return p, r.err
}

func decodeDiffParams(v *LazyLoadedVariable) (p diffParams, err error) {
	r := newParamReader(v)
	p.oldVar = r.str("oldtext-var")
	p.newVar = r.str("newtext-var")
	return p, r.err
}

func decodeDiffSplitParams(v *LazyLoadedVariable) (p diffSplitParams, err error) {
	r := newParamReader(v)
	p.diffVar = r.str("diff-var")
	p.linePrefix = r.str("line-prefix")
	if r.err == nil && p.linePrefix != "+" && p.linePrefix != "-" {
		r.fail("line-prefix", "expected + or -, got %q", p.linePrefix)
	}
	return p, r.err
}

func decodeArrayDiffParams(v *LazyLoadedVariable) (p arrayDiffParams, err error) {
	r := newParamReader(v)
	p.baseVar = r.str("base-var")
	p.minusVar = r.str("minus-var")
	return p, r.err
}
