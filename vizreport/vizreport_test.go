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

package vizreport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/seriacheck/store"
)

func TestRenderProducesHTML(t *testing.T) {
	runs := []store.Run{
		{Label: "a", Verdict: "serializable", DurationMS: 12},
		{Label: "b", Verdict: "cyclic", DurationMS: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, runs))
	assert.True(t, strings.Contains(buf.String(), "<html"))
}

func TestRenderEmptyRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil))
	assert.True(t, buf.Len() > 0)
}
