package vardump

import (
	"sort"
	"strings"

	"github.com/archlinux/archwiki-sub029/ipaddresses"
	"github.com/archlinux/archwiki-sub029/logging"
	"github.com/archlinux/archwiki-sub029/variables"
	"github.com/archlinux/archwiki-sub029/wiki"

	"github.com/rs/zerolog"
)

const unnamedIPVar = "user_unnamed_ip"

// LogRow is the part of a log entry that refers to a variable dump.
type LogRow struct {
	// VarDump is what StoreVarDump returned. nil means the row has no such field, "" that nothing was stored.
	VarDump *string
	// IPHex is the IP of the action in ipaddresses.ToHex form, kept apart from the dump. "" when purged or unknown.
	IPHex string
}

// VariablesBlobStore persists variable holders to a blob store.
type VariablesBlobStore struct {
	logger       zerolog.Logger
	manager      *variables.VariablesManager
	blobs        wiki.BlobStore
	accessLogger logging.ProtectedVarsAccessLogger
	protected    map[string]bool
}

// NewVariablesBlobStore creates a VariablesBlobStore. protectedVars are the names whose values are never persisted
// nor shown to viewers without the right to see them.
func NewVariablesBlobStore(logger zerolog.Logger, manager *variables.VariablesManager, blobs wiki.BlobStore, accessLogger logging.ProtectedVarsAccessLogger, protectedVars []string) *VariablesBlobStore {
	protected := make(map[string]bool, len(protectedVars))
	for _, name := range protectedVars {
		protected[strings.ToLower(name)] = true
	}
	return &VariablesBlobStore{
		logger:       logger,
		manager:      manager,
		blobs:        blobs,
		accessLogger: accessLogger,
		protected:    protected,
	}
}

// IsProtected tells whether the variable holds privacy sensitive data.
func (s *VariablesBlobStore) IsProtected(name string) bool {
	return s.protected[strings.ToLower(name)]
}

// StoreVarDump computes all variables of the holder and persists them. It returns the value to keep in the log row:
// the blob address, or {"_blob":"<address>"} when protected values were replaced by true before persisting.
func (s *VariablesBlobStore) StoreVarDump(holder *variables.VariableHolder) (string, error) {
	s.manager.TranslateDeprecatedVars(holder)

	vars, err := s.manager.DumpAllVars(holder, variables.ComputeAll(), true)
	if err != nil {
		return "", err
	}

	redacted := s.protectedWithValue(vars)
	for _, name := range redacted {
		vars[name] = true
	}

	payload, err := encodeVars(vars)
	if err != nil {
		return "", err
	}

	address, err := s.blobs.StoreBlob(payload)
	if err != nil {
		return "", err
	}

	if len(redacted) == 0 {
		return address, nil
	}
	s.logger.Debug().Strs("variables", redacted).Str("address", address).Msg("Redacted protected variables from var dump")
	return wrapAddress(address)
}

// LoadVarDump reads back a holder stored by StoreVarDump. A blob that cannot be read or parsed gives an empty holder.
func (s *VariablesBlobStore) LoadVarDump(row LogRow) (*variables.VariableHolder, error) {
	if row.VarDump == nil {
		return nil, &InvalidArgumentError{Reason: "missing var dump field"}
	}
	if *row.VarDump == "" {
		return variables.NewVariableHolder(), nil
	}

	address, _, err := unwrapAddress(*row.VarDump)
	if err != nil {
		return nil, &InvalidArgumentError{Reason: err.Error()}
	}

	data, err := s.blobs.GetBlob(address)
	if err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("Failed to read var dump blob")
		return variables.NewVariableHolder(), nil
	}

	vars, err := DecodeVars(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("Failed to parse var dump blob")
		return variables.NewVariableHolder(), nil
	}

	if _, ok := vars[unnamedIPVar]; ok && row.IPHex != "" {
		ip, err := ipaddresses.FormatHex(row.IPHex)
		if err != nil {
			s.logger.Warn().Err(err).Str("ipHex", row.IPHex).Msg("Failed to restore IP of var dump")
		} else {
			vars[unnamedIPVar] = ip
		}
	}

	holder := variables.NewVariableHolderFromNative(vars)
	s.manager.TranslateDeprecatedVars(holder)
	return holder, nil
}

// ExportForViewer exports the computed variables of the holder for display. Protected values are replaced by true
// unless the viewer may see all of them, in which case the access is logged.
func (s *VariablesBlobStore) ExportForViewer(holder *variables.VariableHolder, viewer wiki.Authority) map[string]interface{} {
	vars := s.manager.ExportAllVars(holder)

	protected := s.protectedWithValue(vars)
	if len(protected) == 0 {
		return vars
	}

	if viewer != nil && viewer.CanViewProtectedVariables(protected) {
		if s.accessLogger != nil {
			s.accessLogger.LogProtectedVarsAccess(viewer.Name(), protected)
		}
		return vars
	}

	for _, name := range protected {
		vars[name] = true
	}
	return vars
}

// protectedWithValue lists, sorted, the protected variables of vars that hold a value. Only null and "" count as
// empty; falsy values like "0" or false are still protected data.
func (s *VariablesBlobStore) protectedWithValue(vars map[string]interface{}) []string {
	out := []string{}
	for name, value := range vars {
		if s.protected[name] && value != nil && value != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
