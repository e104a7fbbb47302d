package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/intellinbox/internal/cli"
	"github.com/okian/intellinbox/internal/config"
	"github.com/okian/intellinbox/internal/domain/model"
	"github.com/okian/intellinbox/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// backend answers a fixed set of routes and records every request.
type backend struct {
	mu   sync.Mutex
	reqs []recorded
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.reqs = append(b.reqs, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "GET /":
		_, _ = io.WriteString(w, `{"message":"IntellInbox API is online"}`)
	case "GET /inboxes/":
		_, _ = io.WriteString(w, `[{"id":1,"email_address":"a@example.com","imap_server":"imap.gmail.com","is_active":true,"last_synced":"2024-05-01T10:00:00"}]`)
	case "POST /inboxes/":
		_, _ = io.WriteString(w, `{"id":2,"email_address":"b@example.com","imap_server":"imap.gmail.com","is_active":false,"last_synced":""}`)
	case "PATCH /inboxes/1/status":
		_, _ = io.WriteString(w, `{"id":1,"email_address":"a@example.com","imap_server":"imap.gmail.com","is_active":false}`)
	case "DELETE /inboxes/1", "DELETE /inboxes/3", "POST /inboxes/1/sync", "POST /inboxes/syncall", "POST /inboxes/1/reset", "PATCH /emails/9/analysis":
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	case "GET /emails/":
		_, _ = io.WriteString(w, `[{"id":9,"inbox_id":1,"sender":"x@example.com","subject":"Invoice","body":"pay","status":"completed","received_at":"2024-05-01T09:00:00","analysis":{"category":"finance","priority_score":0.8,"summary":"Invoice due","processed_at":"2024-05-01T09:01:00"}}]`)
	case "GET /emails/9":
		_, _ = io.WriteString(w, `{"id":9,"inbox_id":1,"sender":"x@example.com","subject":"Invoice","body":"please pay","status":"completed","received_at":"2024-05-01T09:00:00","analysis":{"category":"finance","priority_score":0.8,"summary":"Invoice due","processed_at":"2024-05-01T09:01:00"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found"}`)
	}
}

func (b *backend) requests() []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recorded, len(b.reqs))
	copy(out, b.reqs)
	return out
}

func run(srv *httptest.Server, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cfg := config.New()
	cfg.Workers = 2
	full := append([]string{"--base-url", srv.URL}, args...)
	err := cli.Execute(context.Background(), cfg, logger.Nop(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCommands(t *testing.T) {
	Convey("Given a running backend", t, func() {
		be := &backend{}
		srv := httptest.NewServer(be)
		defer srv.Close()

		Convey("ping should print the status message", func() {
			out, _, err := run(srv, "ping")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "IntellInbox API is online\n")
		})

		Convey("inboxes list should print a table", func() {
			out, _, err := run(srv, "inboxes", "list")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "EMAIL")
			So(out, ShouldContainSubstring, "a@example.com")
			So(out, ShouldContainSubstring, "2024-05-01T10:00:00")
		})

		Convey("inboxes list -o json should print the decoded list", func() {
			out, _, err := run(srv, "-o", "json", "inboxes", "list")
			So(err, ShouldBeNil)
			var got []model.Inbox
			So(json.Unmarshal([]byte(out), &got), ShouldBeNil)
			want := []model.Inbox{{
				ID:           1,
				EmailAddress: "a@example.com",
				IMAPServer:   "imap.gmail.com",
				IsActive:     true,
				LastSynced:   "2024-05-01T10:00:00",
			}}
			So(cmp.Diff(want, got), ShouldBeEmpty)
		})

		Convey("inboxes create should send the payload and sync window", func() {
			_, _, err := run(srv, "inboxes", "create", "--email", "b@example.com", "--password", "pw", "--inactive", "--sync-days", "7")
			So(err, ShouldBeNil)
			reqs := be.requests()
			So(reqs, ShouldHaveLength, 1)
			So(reqs[0].Method, ShouldEqual, http.MethodPost)
			So(reqs[0].Query, ShouldEqual, "sync_days=7")
			var body map[string]any
			So(json.Unmarshal([]byte(reqs[0].Body), &body), ShouldBeNil)
			So(body["is_active"], ShouldEqual, false)
			So(body["imap_server"], ShouldEqual, "imap.gmail.com")
		})

		Convey("inboxes create with a bad address should not reach the backend", func() {
			_, _, err := run(srv, "inboxes", "create", "--email", "nope", "--password", "pw")
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(err, cli.ErrUsage), ShouldBeTrue)
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("invalid flag values should be usage errors sent nowhere", func() {
			for _, args := range [][]string{
				{"inboxes", "reset", "1", "--days", "-1"},
				{"emails", "create", "--sender", "not an address", "--receiver", "me@example.com", "--subject", "hi"},
				{"emails", "list", "--limit", "0"},
			} {
				_, _, err := run(srv, args...)
				So(errors.Is(err, cli.ErrUsage), ShouldBeTrue)
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			}
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("inboxes create without a password off a terminal should be a usage error", func() {
			root := cli.NewRootCommand(config.New(), logger.Nop())
			root.SetArgs([]string{"--base-url", srv.URL, "inboxes", "create", "--email", "b@example.com"})
			root.SetIn(strings.NewReader("secret\n"))
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			err := root.ExecuteContext(context.Background())
			So(errors.Is(err, cli.ErrUsage), ShouldBeTrue)
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("inboxes deactivate should patch the status", func() {
			out, _, err := run(srv, "inboxes", "deactivate", "1")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "false")
			reqs := be.requests()
			So(reqs[0].Path, ShouldEqual, "/inboxes/1/status")
			So(reqs[0].Query, ShouldEqual, "is_active=false")
		})

		Convey("inboxes reset should pass the day count", func() {
			out, _, err := run(srv, "inboxes", "reset", "1", "--days", "14")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "reset of inbox 1 started (14 days)")
			So(be.requests()[0].Query, ShouldEqual, "sync_days=14")
		})

		Convey("inboxes reset without --days should fail before any request", func() {
			_, _, err := run(srv, "inboxes", "reset", "1")
			So(err, ShouldNotBeNil)
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("inboxes delete with several ids should report each one", func() {
			out, _, err := run(srv, "inboxes", "delete", "1", "2", "3")
			So(errors.Is(err, cli.ErrFailed), ShouldBeTrue)
			So(out, ShouldContainSubstring, "ok")
			So(out, ShouldContainSubstring, "failed")
			So(out, ShouldContainSubstring, "404")
			So(be.requests(), ShouldHaveLength, 3)
		})

		Convey("inboxes sync -o json should print a batch report", func() {
			out, _, err := run(srv, "-o", "json", "inboxes", "sync", "1", "1")
			So(err, ShouldBeNil)
			var rep struct {
				Action    string  `json:"action"`
				Succeeded []int64 `json:"succeeded"`
			}
			So(json.Unmarshal([]byte(out), &rep), ShouldBeNil)
			So(rep.Action, ShouldEqual, "sync")
			So(rep.Succeeded, ShouldResemble, []int64{1})
			So(be.requests(), ShouldHaveLength, 1)
		})

		Convey("sync-all should trigger the backend", func() {
			_, _, err := run(srv, "sync-all")
			So(err, ShouldBeNil)
			So(be.requests()[0].Path, ShouldEqual, "/inboxes/syncall")
		})

		Convey("emails list should forward pagination only when set", func() {
			out, _, err := run(srv, "emails", "list", "--limit", "5")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "finance")
			So(be.requests()[0].Query, ShouldEqual, "limit=5")

			_, _, err = run(srv, "emails", "list")
			So(err, ShouldBeNil)
			So(be.requests()[1].Query, ShouldEqual, "")
		})

		Convey("emails get -o json should keep the analysis", func() {
			out, _, err := run(srv, "-o", "json", "emails", "get", "9")
			So(err, ShouldBeNil)
			var got model.Email
			So(json.Unmarshal([]byte(out), &got), ShouldBeNil)
			want := &model.Analysis{Category: "finance", PriorityScore: 0.8, Summary: "Invoice due", ProcessedAt: "2024-05-01T09:01:00"}
			So(cmp.Diff(want, got.Analysis), ShouldBeEmpty)
		})

		Convey("emails get should show the analysis and body", func() {
			out, _, err := run(srv, "emails", "get", "9")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Invoice due")
			So(out, ShouldContainSubstring, "please pay")
		})

		Convey("emails reanalyze should patch the analysis route", func() {
			_, _, err := run(srv, "emails", "reanalyze", "9")
			So(err, ShouldBeNil)
			So(be.requests()[0].Method, ShouldEqual, http.MethodPatch)
			So(be.requests()[0].Path, ShouldEqual, "/emails/9/analysis")
		})

		Convey("a malformed id should be a usage error", func() {
			_, _, err := run(srv, "emails", "delete", "abc")
			So(errors.Is(err, cli.ErrUsage), ShouldBeTrue)
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("an unknown output format should be a usage error", func() {
			_, _, err := run(srv, "-o", "yaml", "ping")
			So(errors.Is(err, cli.ErrUsage), ShouldBeTrue)
			So(be.requests(), ShouldBeEmpty)
		})

		Convey("--metrics should print request metrics to stderr", func() {
			_, stderr, err := run(srv, "--metrics", "ping")
			So(err, ShouldBeNil)
			So(stderr, ShouldContainSubstring, "intellinbox_client_requests_total")
			So(stderr, ShouldContainSubstring, `operation="ping"`)
		})
	})
}

func TestTableCells(t *testing.T) {
	Convey("Given a backend returning text with tabs and line breaks", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":4,"inbox_id":1,"sender":"x@example.com\tspoof","subject":"line one\nline\ttwo\r\n","body":"b","status":"pending","received_at":""}]`)
		}))
		defer srv.Close()

		out, _, err := run(srv, "emails", "list")

		Convey("Then each email should stay on one row with the header's columns", func() {
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[1], ShouldContainSubstring, "line one line two")
			So(len(strings.Fields(lines[0])), ShouldEqual, 8)
			So(lines[1], ShouldStartWith, "4 ")
		})
	})
}
