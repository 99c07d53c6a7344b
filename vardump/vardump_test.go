package vardump

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/archlinux/archwiki-sub029/afpdata"
	"github.com/archlinux/archwiki-sub029/ipaddresses"
	"github.com/archlinux/archwiki-sub029/testutils"
	"github.com/archlinux/archwiki-sub029/variables"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func exportAll(s *VariablesBlobStore, h *variables.VariableHolder) map[string]interface{} {
	return s.manager.ExportAllVars(h)
}

func TestRoundTripWithoutProtectedData(t *testing.T) {
	type testcase struct {
		name string
		vars map[string]interface{}
	}
	tests := []testcase{
		{"empty", map[string]interface{}{}},
		{"scalars", map[string]interface{}{"user_name": "Alice", "new_size": int64(12), "user_blocked": false, "nothing": nil}},
		{"floats", map[string]interface{}{"ratio": 1.5, "whole": 2.0, "huge": 1e25, "tiny": -0.001}},
		{"lists", map[string]interface{}{"added_lines": []interface{}{"a", "b"}, "mixed": []interface{}{int64(1), 2.0, "x", true, nil}}},
		{"unicode", map[string]interface{}{"summary": "héllo   \"quoted\" <b>"}},
		{"empty unnamed ip", map[string]interface{}{"user_unnamed_ip": ""}},
		{"null protected", map[string]interface{}{"other_protected_variable": nil}},
	}

	var b strings.Builder
	for _, tc := range tests {
		s, _, _ := newTestBlobStore(t)
		holder := variables.NewVariableHolderFromNative(tc.vars)
		expected := exportAll(s, holder)

		field, err := s.StoreVarDump(holder)
		if err != nil {
			fmt.Fprintf(&b, "%s: got unexpected store error: %s\n", tc.name, err)
			continue
		}
		if strings.HasPrefix(field, "{") {
			fmt.Fprintf(&b, "%s: expected a bare address, got %s\n", tc.name, field)
		}

		loaded, err := s.LoadVarDump(LogRow{VarDump: &field})
		if err != nil {
			fmt.Fprintf(&b, "%s: got unexpected load error: %s\n", tc.name, err)
			continue
		}
		if diff := cmp.Diff(expected, exportAll(s, loaded)); diff != "" {
			fmt.Fprintf(&b, "%s: round trip changed the variables (-want +got):\n%s\n", tc.name, diff)
		}
	}

	if b.Len() > 0 {
		t.Fatalf("\n%s", b.String())
	}
}

func TestRoundTripKeepsIntFloatDistinction(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, _ := newTestBlobStore(t)
	holder := variables.NewVariableHolder()
	holder.SetVar("int_var", 2)
	holder.SetVar("float_var", 2.0)

	// Act
	field, err := s.StoreVarDump(holder)
	loaded, loadErr := s.LoadVarDump(LogRow{VarDump: &field})

	// Assert
	assert.Nil(err)
	assert.Nil(loadErr)
	vars := loaded.GetVars()
	assert.Equal(afpdata.Int, vars["int_var"].Value.Type())
	assert.Equal(afpdata.Float, vars["float_var"].Value.Type())
}

func TestStoreRedactsProtectedValues(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, blobs, _ := newTestBlobStore(t)
	holder := variables.NewVariableHolderFromNative(map[string]interface{}{
		"other_protected_variable": "abc",
		"user_name":                "Alice",
	})

	// Act
	field, err := s.StoreVarDump(holder)
	loaded, loadErr := s.LoadVarDump(LogRow{VarDump: &field})

	// Assert
	assert.Nil(err)
	assert.Nil(loadErr)
	var wrapper map[string]string
	assert.Nil(json.Unmarshal([]byte(field), &wrapper))
	payload, blobErr := blobs.GetBlob(wrapper["_blob"])
	assert.Nil(blobErr)
	assert.NotContains(string(payload), "abc")
	assert.Equal(map[string]interface{}{"other_protected_variable": true, "user_name": "Alice"}, exportAll(s, loaded))
}

func TestStoreRedactsFalsyProtectedValues(t *testing.T) {
	var b strings.Builder
	for _, value := range []interface{}{"0", false, int64(0), float64(0), []interface{}{}} {
		// Arrange
		s, blobs, _ := newTestBlobStore(t)
		holder := variables.NewVariableHolderFromNative(map[string]interface{}{"other_protected_variable": value})

		// Act
		field, err := s.StoreVarDump(holder)
		if err != nil {
			fmt.Fprintf(&b, "%#v: got unexpected store error: %s\n", value, err)
			continue
		}

		// Assert
		address, redacted, err := unwrapAddress(field)
		if err != nil || !redacted {
			fmt.Fprintf(&b, "%#v: expected a _blob wrapper, got %s\n", value, field)
			continue
		}
		payload, _ := blobs.GetBlob(address)
		if string(payload) != `{"other_protected_variable":true}` {
			fmt.Fprintf(&b, "%#v: expected the value stored as true, got %s\n", value, payload)
		}
	}

	if b.Len() > 0 {
		t.Fatalf("\n%s", b.String())
	}
}

func TestExportForViewerRedactsFalsyProtectedValues(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, _ := newTestBlobStore(t)
	holder := variables.NewVariableHolderFromNative(map[string]interface{}{
		"other_protected_variable": "0",
		"user_unnamed_ip":          false,
	})

	// Act
	vars := s.ExportForViewer(holder, &mockAuthority{name: "Visitor"})

	// Assert
	assert.Equal(map[string]interface{}{"other_protected_variable": true, "user_unnamed_ip": true}, vars)
}

func TestStoreComputesLazyVariables(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, _ := newTestBlobStore(t)
	holder := variables.NewVariableHolderFromNative(map[string]interface{}{"new_wikitext": "abcd"})
	holder.SetLazyLoadVar("new_size", variables.MethodLength, map[string]interface{}{"length-var": "new_wikitext"})
	holder.SetVar("article_articleid", 5)

	// Act
	field, err := s.StoreVarDump(holder)
	loaded, loadErr := s.LoadVarDump(LogRow{VarDump: &field})

	// Assert
	assert.Nil(err)
	assert.Nil(loadErr)
	assert.Equal(map[string]interface{}{"new_wikitext": "abcd", "new_size": int64(4), "page_id": int64(5)}, exportAll(s, loaded))
}

func TestUnnamedIPEmptyRedactedAbsent(t *testing.T) {
	hex, err := ipaddresses.ToHex("192.0.2.7")
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	type testcase struct {
		name     string
		vars     map[string]interface{}
		ipHex    string
		expected map[string]interface{}
	}
	tests := []testcase{
		{"empty without side channel", map[string]interface{}{"user_unnamed_ip": ""}, "", map[string]interface{}{"user_unnamed_ip": ""}},
		{"empty with side channel", map[string]interface{}{"user_unnamed_ip": ""}, hex, map[string]interface{}{"user_unnamed_ip": "192.0.2.7"}},
		{"redacted without side channel", map[string]interface{}{"user_unnamed_ip": "192.0.2.7"}, "", map[string]interface{}{"user_unnamed_ip": true}},
		{"redacted with side channel", map[string]interface{}{"user_unnamed_ip": "192.0.2.7"}, hex, map[string]interface{}{"user_unnamed_ip": "192.0.2.7"}},
		{"absent", map[string]interface{}{"user_name": "Alice"}, hex, map[string]interface{}{"user_name": "Alice"}},
		{"bad side channel", map[string]interface{}{"user_unnamed_ip": ""}, "XYZ", map[string]interface{}{"user_unnamed_ip": ""}},
	}

	var b strings.Builder
	for _, tc := range tests {
		s, _, _ := newTestBlobStore(t)
		field, err := s.StoreVarDump(variables.NewVariableHolderFromNative(tc.vars))
		if err != nil {
			fmt.Fprintf(&b, "%s: got unexpected store error: %s\n", tc.name, err)
			continue
		}
		loaded, err := s.LoadVarDump(LogRow{VarDump: &field, IPHex: tc.ipHex})
		if err != nil {
			fmt.Fprintf(&b, "%s: got unexpected load error: %s\n", tc.name, err)
			continue
		}
		if diff := cmp.Diff(tc.expected, exportAll(s, loaded)); diff != "" {
			fmt.Fprintf(&b, "%s: unexpected variables (-want +got):\n%s\n", tc.name, diff)
		}
	}

	if b.Len() > 0 {
		t.Fatalf("\n%s", b.String())
	}
}

func TestLoadVarDumpRows(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, _ := newTestBlobStore(t)

	// Act
	_, errMissing := s.LoadVarDump(LogRow{})
	empty, errEmpty := s.LoadVarDump(LogRow{VarDump: strPtr("")})
	unknown, errUnknown := s.LoadVarDump(LogRow{VarDump: strPtr("afb:" + strings.Repeat("0", 64))})
	malformed, errMalformed := s.LoadVarDump(LogRow{VarDump: strPtr("tt:12345")})
	_, errBadWrapper := s.LoadVarDump(LogRow{VarDump: strPtr(`{"_blob":`)})
	_, errEmptyWrapper := s.LoadVarDump(LogRow{VarDump: strPtr(`{"other":"x"}`)})

	// Assert
	var invalid *InvalidArgumentError
	assert.True(errors.As(errMissing, &invalid))
	assert.Nil(errEmpty)
	assert.Equal(0, empty.Len())
	assert.Nil(errUnknown)
	assert.Equal(0, unknown.Len())
	assert.Nil(errMalformed)
	assert.Equal(0, malformed.Len())
	assert.True(errors.As(errBadWrapper, &invalid))
	assert.True(errors.As(errEmptyWrapper, &invalid))
}

func TestLoadCorruptBlobGivesEmptyHolder(t *testing.T) {
	assert := assert.New(t)

	var b strings.Builder
	for _, data := range []string{"not json", `{"nested":{"a":1}}`, `[1,2]`} {
		// Arrange
		logger := testutils.NewTestLogger(t)
		computer := variables.NewLazyVariableComputer(logger, nil, variables.Services{}, "enwiki", language.English)
		manager := variables.NewVariablesManager(logger, variables.NewKeywordsManager(), computer)
		s := NewVariablesBlobStore(logger, manager, &corruptBlobStore{data: []byte(data)}, nil, testProtectedVars)

		// Act
		holder, err := s.LoadVarDump(LogRow{VarDump: strPtr("afb:" + strings.Repeat("1", 64))})

		// Assert
		if err != nil || holder.Len() != 0 {
			fmt.Fprintf(&b, "Expected an empty holder for blob %q, got %v, %v\n", data, holder, err)
		}
	}
	assert.Equal("", b.String())
}

func TestStoreVarDumpPropagatesErrors(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	logger := testutils.NewTestLogger(t)
	computer := variables.NewLazyVariableComputer(logger, nil, variables.Services{}, "enwiki", language.English)
	manager := variables.NewVariablesManager(logger, variables.NewKeywordsManager(), computer)
	failing := NewVariablesBlobStore(logger, manager, &failingBlobStore{}, nil, testProtectedVars)
	s, _, _ := newTestBlobStore(t)
	broken := variables.NewVariableHolder()
	broken.SetLazyLoadVar("broken", "does-not-exist", nil)

	// Act
	_, errStore := failing.StoreVarDump(variables.NewVariableHolderFromNative(map[string]interface{}{"a": 1}))
	_, errCompute := s.StoreVarDump(broken)

	// Assert
	assert.EqualError(errStore, "disk full")
	var unrecognized *variables.UnrecognizedMethodError
	assert.True(errors.As(errCompute, &unrecognized))
}

func TestExportForViewer(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, accessLogger := newTestBlobStore(t)
	holder := variables.NewVariableHolderFromNative(map[string]interface{}{
		"user_unnamed_ip": "192.0.2.7",
		"user_name":       "192.0.2.7",
	})
	admin := &mockAuthority{name: "Admin", allowed: map[string]bool{"user_unnamed_ip": true}}
	visitor := &mockAuthority{name: "Visitor"}

	// Act
	forAdmin := s.ExportForViewer(holder, admin)
	forVisitor := s.ExportForViewer(holder, visitor)
	forNobody := s.ExportForViewer(holder, nil)

	// Assert
	assert.Equal("192.0.2.7", forAdmin["user_unnamed_ip"])
	assert.Equal(true, forVisitor["user_unnamed_ip"])
	assert.Equal(true, forNobody["user_unnamed_ip"])
	assert.Equal("192.0.2.7", forVisitor["user_name"])
	assert.Equal([]string{"Admin"}, accessLogger.viewers)
	assert.Equal([][]string{{"user_unnamed_ip"}}, accessLogger.vars)
}

func TestExportForViewerWithoutProtectedValues(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	s, _, accessLogger := newTestBlobStore(t)
	holder := variables.NewVariableHolderFromNative(map[string]interface{}{"user_unnamed_ip": "", "user_name": "Alice"})

	// Act
	vars := s.ExportForViewer(holder, &mockAuthority{name: "Admin"})

	// Assert
	assert.Equal(map[string]interface{}{"user_unnamed_ip": "", "user_name": "Alice"}, vars)
	assert.Empty(accessLogger.viewers)
}

func TestIsProtected(t *testing.T) {
	assert := assert.New(t)

	s, _, _ := newTestBlobStore(t)

	assert.True(s.IsProtected("user_unnamed_ip"))
	assert.True(s.IsProtected("USER_UNNAMED_IP"))
	assert.True(s.IsProtected("other_protected_variable"))
	assert.False(s.IsProtected("user_name"))
}

func TestLoadUnreadableBlobLogsWarning(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	logger, capture := testutils.NewCapturingTestLogger(t)
	computer := variables.NewLazyVariableComputer(logger, nil, variables.Services{}, "enwiki", language.English)
	manager := variables.NewVariablesManager(logger, variables.NewKeywordsManager(), computer)
	s := NewVariablesBlobStore(logger, manager, &failingBlobStore{}, nil, testProtectedVars)

	// Act
	holder, err := s.LoadVarDump(LogRow{VarDump: strPtr("afb:" + strings.Repeat("2", 64))})

	// Assert
	assert.Nil(err)
	assert.Equal(0, holder.Len())
	assert.True(capture.Contains("Failed to read var dump blob"))
}
