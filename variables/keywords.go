package variables

import (
	"sort"
	"strings"
)

var builtinVars = []string{
	"accountname",
	"action",
	"added_lines",
	"added_lines_pst",
	"added_links",
	"all_links",
	"edit_delta",
	"edit_diff",
	"edit_diff_pst",
	"file_bits_per_channel",
	"file_height",
	"file_mediatype",
	"file_mime",
	"file_sha1",
	"file_size",
	"file_width",
	"moved_from_age",
	"moved_from_first_contributor",
	"moved_from_id",
	"moved_from_last_edit_age",
	"moved_from_namespace",
	"moved_from_prefixedtitle",
	"moved_from_recent_contributors",
	"moved_from_restrictions_create",
	"moved_from_restrictions_edit",
	"moved_from_restrictions_move",
	"moved_from_restrictions_upload",
	"moved_from_title",
	"moved_to_age",
	"moved_to_first_contributor",
	"moved_to_id",
	"moved_to_last_edit_age",
	"moved_to_namespace",
	"moved_to_prefixedtitle",
	"moved_to_recent_contributors",
	"moved_to_restrictions_create",
	"moved_to_restrictions_edit",
	"moved_to_restrictions_move",
	"moved_to_restrictions_upload",
	"moved_to_title",
	"new_content_model",
	"new_html",
	"new_pst",
	"new_size",
	"new_text",
	"new_wikitext",
	"old_content_model",
	"old_links",
	"old_size",
	"old_wikitext",
	"page_age",
	"page_first_contributor",
	"page_id",
	"page_last_edit_age",
	"page_namespace",
	"page_prefixedtitle",
	"page_recent_contributors",
	"page_restrictions_create",
	"page_restrictions_edit",
	"page_restrictions_move",
	"page_restrictions_upload",
	"page_title",
	"removed_lines",
	"removed_links",
	"summary",
	"timestamp",
	"user_age",
	"user_blocked",
	"user_editcount",
	"user_emailconfirm",
	"user_groups",
	"user_id",
	"user_name",
	"user_rights",
	"user_type",
	"user_unnamed_ip",
	"wiki_language",
	"wiki_name",
}

var deprecatedVars = map[string]string{
	"article_articleid":           "page_id",
	"article_first_contributor":   "page_first_contributor",
	"article_namespace":           "page_namespace",
	"article_prefixedtext":        "page_prefixedtitle",
	"article_recent_contributors": "page_recent_contributors",
	"article_restrictions_create": "page_restrictions_create",
	"article_restrictions_edit":   "page_restrictions_edit",
	"article_restrictions_move":   "page_restrictions_move",
	"article_restrictions_upload": "page_restrictions_upload",
	"article_text":                "page_title",
	"moved_from_articleid":        "moved_from_id",
	"moved_from_prefixedtext":     "moved_from_prefixedtitle",
	"moved_from_text":             "moved_from_title",
	"moved_to_articleid":          "moved_to_id",
	"moved_to_prefixedtext":       "moved_to_prefixedtitle",
	"moved_to_text":               "moved_to_title",
	"old_text":                    "old_wikitext",
}

var disabledVars = []string{
	"article_views",
	"minor_edit",
	"old_html",
}

// KeywordsManager knows which variable names belong to the system, as opposed to names set by callers.
type KeywordsManager struct {
	builtin map[string]bool
}

// NewKeywordsManager creates a KeywordsManager. extraVars registers additional builtin variables, the way
// extensions add their own.
func NewKeywordsManager(extraVars ...string) *KeywordsManager {
	k := &KeywordsManager{builtin: make(map[string]bool)}
	for _, name := range builtinVars {
		k.builtin[name] = true
	}
	for _, name := range extraVars {
		k.builtin[strings.ToLower(name)] = true
	}
	return k
}

// BuiltinVars returns the names of all active builtin variables, sorted.
func (k *KeywordsManager) BuiltinVars() []string {
	out := make([]string, 0, len(k.builtin))
	for name := range k.builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DeprecatedVars returns the mapping of deprecated names to their current names.
func (k *KeywordsManager) DeprecatedVars() map[string]string {
	out := make(map[string]string, len(deprecatedVars))
	for old, cur := range deprecatedVars {
		out[old] = cur
	}
	return out
}

// DisabledVars returns the names of variables that are no longer computed but may still appear in old dumps.
func (k *KeywordsManager) DisabledVars() []string {
	out := make([]string, len(disabledVars))
	copy(out, disabledVars)
	return out
}

// VarExists tells whether the name is an active builtin variable or a deprecated alias of one.
func (k *KeywordsManager) VarExists(name string) bool {
	name = strings.ToLower(name)
	_, deprecated := deprecatedVars[name]
	return k.builtin[name] || deprecated
}

// IsVarDeprecated tells whether the name is a deprecated alias.
func (k *KeywordsManager) IsVarDeprecated(name string) bool {
	_, ok := deprecatedVars[strings.ToLower(name)]
	return ok
}

// IsVarDisabled tells whether the variable has been disabled.
func (k *KeywordsManager) IsVarDisabled(name string) bool {
	name = strings.ToLower(name)
	for _, d := range disabledVars {
		if d == name {
			return true
		}
	}
	return false
}

// IsCoreVar tells whether the name is builtin, deprecated or disabled, i.e. not set by a caller.
func (k *KeywordsManager) IsCoreVar(name string) bool {
	return k.VarExists(name) || k.IsVarDisabled(name)
}
