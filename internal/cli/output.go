package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/intellinbox/internal/adapters/http/client"
	"github.com/okian/intellinbox/internal/batch"
	"github.com/okian/intellinbox/internal/domain/model"
)

type printer struct {
	w      io.Writer
	format string
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) table(header string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if header != "" {
		fmt.Fprintln(tw, header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cellReplacer.Replace(cell))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (p printer) status(s client.Status) error {
	if p.format == OutputJSON {
		return p.json(s)
	}
	_, err := fmt.Fprintln(p.w, s.Message)
	return err
}

func (p printer) message(msg string) error {
	if p.format == OutputJSON {
		return p.json(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p printer) inboxes(list []model.Inbox) error {
	if p.format == OutputJSON {
		if list == nil {
			list = []model.Inbox{}
		}
		return p.json(list)
	}
	rows := make([][]string, 0, len(list))
	for _, in := range list {
		rows = append(rows, []string{
			strconv.FormatInt(in.ID, 10),
			in.EmailAddress,
			in.IMAPServer,
			strconv.FormatBool(in.IsActive),
			orDash(in.LastSynced),
		})
	}
	return p.table("ID\tEMAIL\tIMAP SERVER\tACTIVE\tLAST SYNCED", rows)
}

func (p printer) inbox(in model.Inbox) error {
	if p.format == OutputJSON {
		return p.json(in)
	}
	return p.inboxes([]model.Inbox{in})
}

func (p printer) emails(list []model.Email) error {
	if p.format == OutputJSON {
		if list == nil {
			list = []model.Email{}
		}
		return p.json(list)
	}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		category, priority := "-", "-"
		if e.Analyzed() {
			category = e.Analysis.Category
			priority = strconv.FormatFloat(e.Analysis.PriorityScore, 'f', -1, 64)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.InboxID, 10),
			e.Sender,
			truncate(e.Subject, subjectWidth),
			string(e.Status),
			category,
			priority,
			orDash(e.ReceivedAt),
		})
	}
	return p.table("ID\tINBOX\tSENDER\tSUBJECT\tSTATUS\tCATEGORY\tPRIORITY\tRECEIVED", rows)
}

// email prints one email as key/value rows, including body and summary.
func (p printer) email(e model.Email) error {
	if p.format == OutputJSON {
		return p.json(e)
	}
	rows := [][]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Inbox", strconv.FormatInt(e.InboxID, 10)},
		{"Sender", e.Sender},
		{"Receiver", orDash(e.Receiver)},
		{"Subject", e.Subject},
		{"Status", string(e.Status)},
		{"Received", orDash(e.ReceivedAt)},
	}
	if e.Analyzed() {
		rows = append(rows,
			[]string{"Category", e.Analysis.Category},
			[]string{"Priority", strconv.FormatFloat(e.Analysis.PriorityScore, 'f', -1, 64)},
			[]string{"Summary", e.Analysis.Summary},
			[]string{"Processed", orDash(e.Analysis.ProcessedAt)},
		)
	}
	if err := p.table("", rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n%s\n", e.Body)
	return err
}

type batchFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

type batchReport struct {
	Action    string         `json:"action"`
	Succeeded []int64        `json:"succeeded"`
	Failed    []batchFailure `json:"failed"`
	Skipped   []int64        `json:"skipped"`
}

func (p printer) batch(verb string, res batch.Result) error {
	if p.format == OutputJSON {
		rep := batchReport{
			Action:    verb,
			Succeeded: nonNil(res.Succeeded),
			Failed:    make([]batchFailure, 0, len(res.Failed)),
			Skipped:   nonNil(res.Skipped),
		}
		for _, f := range res.Failed {
			rep.Failed = append(rep.Failed, batchFailure{ID: f.ID, Error: f.Err.Error()})
		}
		return p.json(rep)
	}
	rows := make([][]string, 0, len(res.Succeeded)+len(res.Failed)+len(res.Skipped))
	for _, id := range res.Succeeded {
		rows = append(rows, []string{strconv.FormatInt(id, 10), "ok", ""})
	}
	for _, f := range res.Failed {
		rows = append(rows, []string{strconv.FormatInt(f.ID, 10), "failed", f.Err.Error()})
	}
	for _, id := range res.Skipped {
		rows = append(rows, []string{strconv.FormatInt(id, 10), "skipped", ""})
	}
	return p.table("ID\t"+strings.ToUpper(verb)+"\tERROR", rows)
}

const subjectWidth = 48

// cellReplacer keeps backend text from breaking table rows and columns.
var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ", "\v", " ", "\f", " ")

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
