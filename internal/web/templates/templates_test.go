package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/statentry/internal/core"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("<b>bad</b>", "retry", "ERR000").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "Code: ERR000") {
		t.Errorf("missing code: %s", out)
	}
}

func TestSessionPage_EmptyState(t *testing.T) {
	sess := core.NewSession()
	_ = sess.DefineFieldCount(1)
	_ = sess.UpdateDraftField(0, "name", core.ShortText)
	_, _ = sess.CommitSchema()

	var buf bytes.Buffer
	if err := SessionPage("abc", sess.Snapshot()).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No data yet") {
		t.Errorf("missing empty-state message: %s", out)
	}
	if !strings.Contains(out, `/api/sessions/abc/export`) {
		t.Errorf("missing export link: %s", out)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.HasSuffix(out, "</html>") {
		t.Errorf("page not wrapped in layout")
	}
}

func TestSessionPage_Rows(t *testing.T) {
	sess := core.NewSession()
	_ = sess.DefineFieldCount(2)
	_ = sess.UpdateDraftField(0, "name", core.ShortText)
	_ = sess.UpdateDraftField(1, "age", core.Number)
	_, _ = sess.CommitSchema()
	_, _ = sess.SubmitRow(map[string]any{"name": "<script>", "age": "30"})
	_, _ = sess.SubmitRow(map[string]any{"name": "Lee"})

	var buf bytes.Buffer
	if err := SessionPage("abc", sess.Snapshot()).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("cell text not escaped")
	}
	if !strings.Contains(out, "Data (2 rows)") {
		t.Errorf("missing row count: %s", out)
	}
	if !strings.Contains(out, `<td class="cell null"></td>`) {
		t.Errorf("null cell not rendered empty: %s", out)
	}
	if !strings.Contains(out, "<th>age</th>") {
		t.Errorf("missing header: %s", out)
	}
}

func TestDraftForm_SelectsType(t *testing.T) {
	var buf bytes.Buffer
	draft := []core.Field{{Name: "d", Type: core.Date}}
	if err := DraftForm(draft).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<option value="date" selected>date</option>`) {
		t.Errorf("date option not selected: %s", buf.String())
	}
}
