package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// counterValue はレジストリから指定メトリクスのカウンタ値を取得するヘルパー。
// ラベル付きメトリクスの場合は全系列の合計を返す。見つからない場合は-1を返す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return -1
}

// TestRecordLoginSuccess_IncrementsCounter はログイン成功カウンタが増加することを検証する。
func TestRecordLoginSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginSuccess()

	if got := counterValue(t, reg, "authman_login_success_total"); got != 2 {
		t.Errorf("login_success_total = %v, want 2", got)
	}
}

// TestRecordLoginFailure_IncrementsCounterWithReason はログイン失敗カウンタが理由別に増加することを検証する。
func TestRecordLoginFailure_IncrementsCounterWithReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginFailure("invalid_state")
	c.RecordLoginFailure("invalid_state")
	c.RecordLoginFailure("unconfigured")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "authman_login_fail_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			reason := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch reason {
			case "invalid_state":
				if val != 2 {
					t.Errorf("login_fail_total{reason=invalid_state} = %v, want 2", val)
				}
			case "unconfigured":
				if val != 1 {
					t.Errorf("login_fail_total{reason=unconfigured} = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected reason label %q", reason)
			}
		}
	}
	if !found {
		t.Error("authman_login_fail_total metric not found")
	}
}

// TestRecordSessionCreated_IncrementsCounter はセッション発行カウンタが増加することを検証する。
func TestRecordSessionCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionCreated()

	if got := counterValue(t, reg, "authman_sessions_created_total"); got != 1 {
		t.Errorf("sessions_created_total = %v, want 1", got)
	}
}

// TestRecordSessionRevoked_IncrementsCounter はセッション失効カウンタが増加することを検証する。
func TestRecordSessionRevoked_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionRevoked()
	c.RecordSessionRevoked()
	c.RecordSessionRevoked()

	if got := counterValue(t, reg, "authman_sessions_revoked_total"); got != 3 {
		t.Errorf("sessions_revoked_total = %v, want 3", got)
	}
}

// TestRecordSessionValidation_LabelsByResult はセッション検証カウンタが結果別に増加することを検証する。
func TestRecordSessionValidation_LabelsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionValidation(true)
	c.RecordSessionValidation(true)
	c.RecordSessionValidation(false)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != "authman_session_validation_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			result := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch result {
			case "valid":
				if val != 2 {
					t.Errorf("session_validation_total{result=valid} = %v, want 2", val)
				}
			case "invalid":
				if val != 1 {
					t.Errorf("session_validation_total{result=invalid} = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected result label %q", result)
			}
		}
		return
	}
	t.Error("authman_session_validation_total metric not found")
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(403)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != "authman_http_status_total" {
			continue
		}
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			code := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch code {
			case "200":
				if val != 2 {
					t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
				}
			case "403":
				if val != 1 {
					t.Errorf("http_status_total{status_code=403} = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected status_code label %q", code)
			}
		}
		return
	}
	t.Error("authman_http_status_total metric not found")
}

// TestRecordCallbackLatency_ObservesHistogram はコールバックレイテンシがヒストグラムに記録されることを検証する。
func TestRecordCallbackLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCallbackLatency(150 * time.Millisecond)
	c.RecordCallbackLatency(300 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != "authman_callback_latency_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 2 {
			t.Errorf("sample count = %d, want 2", h.GetSampleCount())
		}
		wantSum := 0.45
		if sum := h.GetSampleSum(); sum < wantSum-0.001 || sum > wantSum+0.001 {
			t.Errorf("sample sum = %v, want about %v", sum, wantSum)
		}
		return
	}
	t.Error("authman_callback_latency_seconds metric not found")
}

// TestNewCollector_RegistersAllMetrics は全メトリクスがレジストリに登録されることを検証する。
// 未登録のメトリクスはスクレイプされないため、登録漏れを検出する。
func TestNewCollector_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	// 各メトリクスに最低1回記録してGatherに現れるようにする
	c.RecordLoginSuccess()
	c.RecordLoginFailure("unconfigured")
	c.RecordSessionCreated()
	c.RecordSessionRevoked()
	c.RecordSessionValidation(true)
	c.RecordHTTPStatus(200)
	c.RecordCallbackLatency(time.Millisecond)

	expected := []string{
		"authman_login_success_total",
		"authman_login_fail_total",
		"authman_sessions_created_total",
		"authman_sessions_revoked_total",
		"authman_session_validation_total",
		"authman_http_status_total",
		"authman_callback_latency_seconds",
	}

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	registered := make(map[string]bool)
	for _, mf := range metrics {
		registered[mf.GetName()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("metric %q is not registered", name)
		}
	}
}
