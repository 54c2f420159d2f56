// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	collector := NewCollector(reg)

	require.NotNil(t, collector)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)
}

func TestCollector(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.Block()
	collector.Block()
	collector.Transactions(3, 1)
	collector.Relayed(250 * time.Millisecond)
	collector.RelayFailed()
	collector.Attempt()
	collector.Status(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.blocks))
	assert.Equal(t, float64(3), testutil.ToFloat64(collector.decoded))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.skipped))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.relayed))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.failed))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.attempts))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.status))
}
