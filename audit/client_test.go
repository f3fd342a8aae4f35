package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeropapel/zeropapel-go/audit"
	"github.com/zeropapel/zeropapel-go/credentials/storefake"
	"github.com/zeropapel/zeropapel-go/transport"
)

func newClient(t *testing.T, baseURL string) *audit.Client {
	t.Helper()

	tr, err := transport.New(baseURL, storefake.NewFakeStore())
	require.NoError(t, err)

	client, err := audit.New(tr)
	require.NoError(t, err)
	return client
}

func TestStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audit/stats", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("days"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"period_days":     7,
			"total_documents": 12,
			"documents_signed": 3,
			"action_types":    map[string]int{"document_signed": 3},
			"daily_activity":  []map[string]any{{"date": "2026-08-30", "count": 2}},
		})
	}))
	defer srv.Close()

	stats, err := newClient(t, srv.URL).Stats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, stats.PeriodDays)
	require.Equal(t, 12, stats.TotalDocuments)
	require.Equal(t, 3, stats.ActionTypes["document_signed"])
	require.Len(t, stats.DailyActivity, 1)
}

func TestLogsBuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audit/logs", r.URL.Path)
		require.Equal(t, "document_signed", r.URL.Query().Get("action_type"))
		require.Equal(t, "7", r.URL.Query().Get("document_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"logs":  []map[string]any{{"id": 1, "action_type": "document_signed"}},
			"total": 1,
		})
	}))
	defer srv.Close()

	list, err := newClient(t, srv.URL).Logs(context.Background(), audit.LogsParams{
		ActionType: "document_signed",
		DocumentID: 7,
	})
	require.NoError(t, err)
	require.Len(t, list.Logs, 1)
	require.Equal(t, "document_signed", list.Logs[0].ActionType)
}
