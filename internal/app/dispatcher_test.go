package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
	"github.com/hive-corporation/f2b-notifier/internal/logger"
)

type fakeGeo struct {
	result domain.Enrichment
	calls  []string
}

func (f *fakeGeo) Name() string { return "fake" }

func (f *fakeGeo) Locate(_ context.Context, ip string) domain.Enrichment {
	f.calls = append(f.calls, ip)
	return f.result
}

type sentMessage struct {
	webhook string
	text    string
}

type fakeNotifier struct {
	delivery domain.Delivery
	sent     []sentMessage
}

func (f *fakeNotifier) Notify(_ context.Context, webhookPath, text string) domain.Delivery {
	f.sent = append(f.sent, sentMessage{webhook: webhookPath, text: text})
	return f.delivery
}

func TestDispatch_BanEndToEnd(t *testing.T) {
	geo := &fakeGeo{result: domain.Enrichment{Outcome: domain.Enriched, CountryCode: "us", CountryName: "United States"}}
	n := &fakeNotifier{delivery: domain.Delivery{Outcome: domain.Sent, StatusCode: 200}}

	d := NewDispatcher(geo, n, false, nil)
	res := d.Dispatch(context.Background(), domain.ActionRequest{
		WebhookPath: "T/B/K",
		Action:      domain.ActionBan,
		Jail:        "sshd",
		IP:          "8.8.8.8",
		Failures:    3,
	})

	want := "Banned :flag-us: 8.8.8.8 (United States) in jail sshd for 3 failures"
	if res.Message != want {
		t.Errorf("Message = %q, want %q", res.Message, want)
	}
	if len(geo.calls) != 1 || geo.calls[0] != "8.8.8.8" {
		t.Errorf("geo calls = %v", geo.calls)
	}
	if len(n.sent) != 1 || n.sent[0] != (sentMessage{webhook: "T/B/K", text: want}) {
		t.Errorf("sent = %+v", n.sent)
	}
	if res.Delivery.Outcome != domain.Sent {
		t.Errorf("Delivery = %s, want sent", res.Delivery.Outcome)
	}
	if res.EventID == "" {
		t.Error("EventID should be set")
	}
}

func TestDispatch_NonBanSkipsLookup(t *testing.T) {
	tests := []struct {
		req  domain.ActionRequest
		want string
	}{
		{domain.ActionRequest{WebhookPath: "w", Action: domain.ActionUnban, Jail: "sshd", IP: "1.2.3.4"}, "Removed 1.2.3.4 from jail sshd"},
		{domain.ActionRequest{WebhookPath: "w", Action: domain.ActionStart, Jail: "sshd"}, "Jail 'sshd' has been started"},
		{domain.ActionRequest{WebhookPath: "w", Action: domain.ActionStop, Jail: "sshd"}, "Jail 'sshd' has been stopped"},
	}

	for _, tt := range tests {
		t.Run(string(tt.req.Action), func(t *testing.T) {
			geo := &fakeGeo{}
			n := &fakeNotifier{delivery: domain.Delivery{Outcome: domain.Sent}}

			res := NewDispatcher(geo, n, false, nil).Dispatch(context.Background(), tt.req)

			if res.Message != tt.want {
				t.Errorf("Message = %q, want %q", res.Message, tt.want)
			}
			if len(geo.calls) != 0 {
				t.Errorf("lookup should not run for %s, got %v", tt.req.Action, geo.calls)
			}
			if res.Enrichment.Outcome != domain.Unenriched {
				t.Errorf("Enrichment = %s, want unenriched", res.Enrichment.Outcome)
			}
		})
	}
}

func TestDispatch_LookupFailureStillNotifies(t *testing.T) {
	geo := &fakeGeo{result: domain.Unenrich(errors.New("context deadline exceeded"))}
	n := &fakeNotifier{delivery: domain.Delivery{Outcome: domain.Sent}}

	res := NewDispatcher(geo, n, false, nil).Dispatch(context.Background(), domain.ActionRequest{
		WebhookPath: "w", Action: domain.ActionBan, Jail: "sshd", IP: "8.8.8.8", Failures: 1,
	})

	want := "Banned 8.8.8.8 (Unknown) in jail sshd for 1 failure"
	if res.Message != want {
		t.Errorf("Message = %q, want %q", res.Message, want)
	}
	if strings.Contains(res.Message, ":flag-") {
		t.Error("message should carry no flag when lookup failed")
	}
	if len(n.sent) != 1 {
		t.Errorf("notifier calls = %d, want 1", len(n.sent))
	}
}

func TestDispatch_DeliveryFailureIsReported(t *testing.T) {
	geo := &fakeGeo{}
	n := &fakeNotifier{delivery: domain.Delivery{Outcome: domain.Failed, StatusCode: 500, Err: errors.New("slack webhook returned status 500")}}

	res := NewDispatcher(geo, n, false, nil).Dispatch(context.Background(), domain.ActionRequest{
		WebhookPath: "w", Action: domain.ActionStop, Jail: "sshd",
	})

	if res.Delivery.Outcome != domain.Failed || res.Delivery.StatusCode != 500 {
		t.Errorf("Delivery = %+v", res.Delivery)
	}
	if len(n.sent) != 1 {
		t.Errorf("delivery must be attempted exactly once, got %d", len(n.sent))
	}
}

func TestDispatch_FailuresLoggedOnceWithEventID(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetLevel("info")

	geo := &fakeGeo{result: domain.Unenrich(errors.New("dial tcp: i/o timeout"))}
	n := &fakeNotifier{delivery: domain.Delivery{Outcome: domain.Failed, Err: errors.New("slack webhook returned status 500")}}

	res := NewDispatcher(geo, n, false, nil).Dispatch(context.Background(), domain.ActionRequest{
		WebhookPath: "w", Action: domain.ActionBan, Jail: "sshd", IP: "8.8.8.8", Failures: 3,
	})

	out := logs.String()
	if got := strings.Count(out, "i/o timeout"); got != 1 {
		t.Errorf("lookup error logged %d times, want 1:\n%s", got, out)
	}
	if got := strings.Count(out, "status 500"); got != 1 {
		t.Errorf("delivery error logged %d times, want 1:\n%s", got, out)
	}
	if got := strings.Count(out, res.EventID); got < 3 {
		t.Errorf("event id %s should tag every line, got %d:\n%s", res.EventID, got, out)
	}
}

func TestDispatch_DryRun(t *testing.T) {
	geo := &fakeGeo{result: domain.Enrichment{Outcome: domain.Enriched, CountryCode: "zz"}}
	n := &fakeNotifier{}
	var out bytes.Buffer

	res := NewDispatcher(geo, n, true, &out).Dispatch(context.Background(), domain.ActionRequest{
		WebhookPath: "w", Action: domain.ActionBan, Jail: "nginx", IP: "1.2.3.4", Failures: 2,
	})

	want := "Banned :flag-zz: 1.2.3.4 (Unknown) in jail nginx for 2 failures"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if len(n.sent) != 0 {
		t.Error("dry run must not post")
	}
	if res.Delivery.Outcome != domain.Skipped {
		t.Errorf("Delivery = %s, want skipped", res.Delivery.Outcome)
	}
}
