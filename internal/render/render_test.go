package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsreminder/internal"
)

func entry(y, m, d int, confs []string, schools []string) internal.DateEntry {
	e := internal.DateEntry{
		Date:          internal.Date{Year: y, Month: time.Month(m), Day: d},
		Confirmations: map[string]struct{}{},
		Schools:       map[string]struct{}{},
	}
	for _, c := range confs {
		e.Confirmations[c] = struct{}{}
	}
	for _, s := range schools {
		e.Schools[s] = struct{}{}
	}
	return e
}

func TestDateLine(t *testing.T) {
	cases := []struct {
		name  string
		entry internal.DateEntry
		want  string
	}{
		{
			name:  "single",
			entry: entry(2024, 2, 1, []string{"5"}, []string{"Oak"}),
			want:  "- 2024-02-01 at Oak (Confirmation: 5)",
		},
		{
			name:  "sorted sets",
			entry: entry(2024, 2, 1, []string{"200", "100"}, []string{"Pine", "Elm"}),
			want:  "- 2024-02-01 at Elm, Pine (Confirmation: 100, 200)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DateLine(tc.entry))
		})
	}
}

func TestApproverLinesOnePerConfirmation(t *testing.T) {
	dates := []internal.DateEntry{
		entry(2024, 1, 3, []string{"9", "10"}, []string{"Oak"}),
		entry(2024, 1, 5, []string{"7"}, []string{"Oak"}),
	}
	lines := ApproverLines("Jane Doe", dates)
	assert.Equal(t, []string{
		"- 2024-01-03 | Jane Doe | Confirmation: 10 | Worked (Yes/No): ____",
		"- 2024-01-03 | Jane Doe | Confirmation: 9 | Worked (Yes/No): ____",
		"- 2024-01-05 | Jane Doe | Confirmation: 7 | Worked (Yes/No): ____",
	}, lines)
}

func TestWorkerNotice(t *testing.T) {
	r := Default()
	group := &internal.RecipientGroup{
		Email:      "jane@x.com",
		Substitute: "Jane",
		Dates: []internal.DateEntry{
			entry(2024, 2, 1, []string{"100", "200"}, []string{"Oak"}),
			entry(2024, 2, 2, []string{"300"}, []string{"Oak"}),
		},
	}

	body, err := r.WorkerNotice(group)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "Hello,\n\nI am reaching out from Kelly Education payroll department"))
	assert.Contains(t, body, "\n\n- 2024-02-01 at Oak (Confirmation: 100, 200)\n- 2024-02-02 at Oak (Confirmation: 300)\n\n")
	assert.Contains(t, body, "Link to Frontline Reference Video: "+DefaultReferenceURL+"\n")
	assert.True(t, strings.HasSuffix(body, "Thank you for your prompt attention to this matter."))

	again, err := r.WorkerNotice(group)
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func TestWorkerNoticeCustomOptions(t *testing.T) {
	r, err := New(Options{Organization: "Acme Staffing", ReferenceURL: "https://example.test/video"})
	require.NoError(t, err)

	body, err := r.WorkerNotice(&internal.RecipientGroup{})
	require.NoError(t, err)
	assert.Contains(t, body, "from Acme Staffing payroll department")
	assert.Contains(t, body, "Link to Frontline Reference Video: https://example.test/video")
}

func TestApproverNotice(t *testing.T) {
	body, err := Default().ApproverNotice("Jane Doe", []internal.DateEntry{
		entry(2024, 1, 3, []string{"9"}, []string{"Oak"}),
	})
	require.NoError(t, err)
	assert.Contains(t, body, "verify timesheets for Jane Doe.")
	assert.Contains(t, body, "\n\n- 2024-01-03 | Jane Doe | Confirmation: 9 | Worked (Yes/No): ____\n\n")
	assert.Equal(t, "Timesheet Verification Request – Jane Doe", ApproverSubject("Jane Doe"))
}
