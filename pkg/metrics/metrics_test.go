package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom/memdom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObserverCounters(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.OnAttach(tooltip.Click)
	m.OnShow(tooltip.Click)
	m.OnRecalculate(tooltip.Placement{Side: geometry.Top, Requested: geometry.Bottom, Degraded: true}, time.Millisecond)
	m.OnRecalculate(tooltip.Placement{Side: geometry.Top, Requested: geometry.Top}, time.Microsecond)
	m.OnSkip(tooltip.ErrNotMeasured)
	m.OnSkip(errors.New("other"))
	m.OnHide(tooltip.HideOutsideClick)

	if got := gaugeValue(t, m.active.WithLabelValues("click")); got != 1 {
		t.Errorf("active(click) = %v, want 1", got)
	}
	if got := counterValue(t, m.shows.WithLabelValues("click")); got != 1 {
		t.Errorf("shows(click) = %v, want 1", got)
	}
	if got := counterValue(t, m.recalcs.WithLabelValues("top", "true")); got != 1 {
		t.Errorf("recalcs(top,true) = %v, want 1", got)
	}
	if got := counterValue(t, m.recalcs.WithLabelValues("top", "false")); got != 1 {
		t.Errorf("recalcs(top,false) = %v, want 1", got)
	}
	if got := histogramCount(t, m.recalcDuration); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
	if got := counterValue(t, m.degraded); got != 1 {
		t.Errorf("degraded = %v, want 1", got)
	}
	if got := counterValue(t, m.skips.WithLabelValues("T010")); got != 1 {
		t.Errorf("skips(T010) = %v, want 1", got)
	}
	if got := counterValue(t, m.skips.WithLabelValues("unknown")); got != 1 {
		t.Errorf("skips(unknown) = %v, want 1", got)
	}
	if got := counterValue(t, m.hides.WithLabelValues("outside_click")); got != 1 {
		t.Errorf("hides(outside_click) = %v, want 1", got)
	}

	m.OnClose(tooltip.Click)
	if got := gaugeValue(t, m.active.WithLabelValues("click")); got != 0 {
		t.Errorf("active(click) = %v after close, want 0", got)
	}
}

func TestBridgeCounters(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordMessage("event", nil)
	m.RecordMessage("event", errs.New("T031"))
	m.RecordPatches("style", 3)
	m.RecordPatches("insert", 0)
	m.RecordWebSocketError("read")

	if got := gaugeValue(t, m.sessions); got != 1 {
		t.Errorf("sessions = %v, want 1", got)
	}
	if got := counterValue(t, m.messages.WithLabelValues("event", "success")); got != 1 {
		t.Errorf("messages(event,success) = %v", got)
	}
	if got := counterValue(t, m.messages.WithLabelValues("event", "error")); got != 1 {
		t.Errorf("messages(event,error) = %v", got)
	}
	if got := counterValue(t, m.patches.WithLabelValues("style")); got != 3 {
		t.Errorf("patches(style) = %v, want 3", got)
	}
	if got := counterValue(t, m.wsErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("wsErrors(read) = %v", got)
	}
}

func TestRegistryNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.OnShow(tooltip.Hover)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tooltip_shows_total" {
			found = true
			if l := f.GetMetric()[0].GetLabel(); len(l) != 2 {
				t.Errorf("labels = %v, want app and trigger", l)
			}
		}
	}
	if !found {
		t.Error("tooltip_shows_total not registered")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.OnAttach(tooltip.Hover)
	m.OnShow(tooltip.Hover)
	m.OnHide(tooltip.HideBlur)
	m.OnRecalculate(tooltip.Placement{}, 0)
	m.OnSkip(nil)
	m.OnClose(tooltip.Hover)
	m.SessionOpened()
	m.SessionClosed()
	m.RecordMessage("mount", nil)
	m.RecordPatches("insert", 1)
	m.RecordWebSocketError("read")
}

func TestWithTooltip(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	doc := memdom.New(geometry.Rect{Width: 800, Height: 600})
	anchor := doc.NewElement("button", "a")
	anchor.SetRect(geometry.Rect{X: 100, Y: 300, Width: 50, Height: 20})
	doc.Append(doc.Body(), anchor)

	tip, err := tooltip.Attach(nil, doc, anchor, tooltip.Text("hi"), tooltip.WithObserver(m))
	if err != nil {
		t.Fatal(err)
	}
	tip.Show()
	tip.Close()

	if got := counterValue(t, m.shows.WithLabelValues("hover")); got != 1 {
		t.Errorf("shows(hover) = %v, want 1", got)
	}
	if got := counterValue(t, m.skips.WithLabelValues("T010")); got != 1 {
		t.Errorf("an unmeasured tip should count as skipped, got %v", got)
	}
	if got := counterValue(t, m.hides.WithLabelValues("close")); got != 1 {
		t.Errorf("hides(close) = %v, want 1", got)
	}
}
