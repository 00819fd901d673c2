// Copyright 2025 The Seriacheck Authors
// This file is part of Seriacheck.
//
// Seriacheck is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Seriacheck is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Seriacheck. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/erigontech/seriacheck/config"
)

func withMemFs(t *testing.T) {
	t.Helper()
	old := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = old })
}

func TestRunCheckSerializable(t *testing.T) {
	withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "h.json", []byte(`{
		"n_sizes": [1, 1],
		"txns": {
			"1,0": {"writes": [10]},
			"2,0": {"reads": {"10": [1, 0]}}
		}
	}`), 0o644))

	err := runCheck(zaptest.NewLogger(t), "h.json", config.Default())
	require.NoError(t, err)
}

func TestRunCheckMissingFile(t *testing.T) {
	withMemFs(t)
	err := runCheck(zaptest.NewLogger(t), "missing.json", config.Default())
	require.Error(t, err)
}

func TestRunCheckCompareAgreesOnSerializableHistory(t *testing.T) {
	withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "h.json", []byte(`{
		"n_sizes": [1, 1],
		"txns": {
			"1,0": {"writes": [10]},
			"2,0": {"reads": {"10": [1, 0]}}
		}
	}`), 0o644))

	err := runCheckCompare(zaptest.NewLogger(t), "h.json", config.Default())
	require.NoError(t, err)
}
