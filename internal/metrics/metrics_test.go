// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAction(t *testing.T) {
	m := New()
	m.ObserveAction("login", 200, 10*time.Millisecond)
	m.ObserveAction("login", 200, 10*time.Millisecond)
	m.ObserveAction("login", 401, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("login", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("login", "401")))
}

func TestObserveDownload(t *testing.T) {
	m := New()
	m.ObserveDownload(DownloadOK)
	m.ObserveDownload(DownloadFailed)
	m.ObserveDownload(DownloadOK)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues(DownloadOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues(DownloadFailed)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAction("commit", 200, time.Second)
	m.ObserveDownload(DownloadOK)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveAction("retrieve_by_xpath", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `mxprobe_xas_actions_total{action="retrieve_by_xpath",code="200"} 1`))
}
