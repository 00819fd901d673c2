// Copyright 2025 The Seriacheck Authors
// (adapted from EIP-4844's blob fee formula, consensus/misc/eip4844.go in
// the erigon project)
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

package config

import (
	"github.com/holiman/uint256"
)

// fakeExponential approximates factor * e**(num/denom) with a Taylor
// expansion, terminating when the accumulated term underflows to zero.
// Ported from EIP-4844's blob base fee formula, which uses the same series
// to avoid floating point in a deterministic computation.
func fakeExponential(factor, denom, num uint64) (uint64, bool) {
	f, d, n := uint256.NewInt(factor), uint256.NewInt(denom), uint256.NewInt(num)

	output := uint256.NewInt(0)
	numeratorAccum := new(uint256.Int)
	if _, overflow := numeratorAccum.MulOverflow(f, d); overflow {
		return 0, false
	}

	divisor := new(uint256.Int)
	for i := uint64(1); numeratorAccum.Sign() > 0; i++ {
		if _, overflow := output.AddOverflow(output, numeratorAccum); overflow {
			return 0, false
		}
		if _, overflow := divisor.MulOverflow(d, uint256.NewInt(i)); overflow {
			return 0, false
		}
		if _, overflow := numeratorAccum.MulDivOverflow(numeratorAccum, n, divisor); overflow {
			return 0, false
		}
	}
	return output.Div(output, d).Uint64(), true
}

// RampMemoCapacity scales MemoCapacity() by fakeExponential's approximation
// of e**(numTxns/64) and caps the result at MemoCapacity(). That factor is
// never below 1, so the result equals MemoCapacity() for every numTxns: the
// capacity does not vary with history size.
func (c Config) RampMemoCapacity(numTxns int) int {
	base := c.MemoCapacity()
	if base == 0 || numTxns <= 1 {
		return base
	}
	scaled, ok := fakeExponential(uint64(base), 64, uint64(numTxns))
	if !ok || scaled == 0 {
		return base
	}
	if scaled > uint64(base) {
		return base
	}
	return int(scaled)
}
