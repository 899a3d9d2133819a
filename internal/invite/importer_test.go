package invite

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecipientsFromCSV(t *testing.T) {
	t.Parallel()

	manifest := strings.Join([]string{
		"Email,Name,Role",
		"ann@example.com,Ann Ọnụọha,manager",
		"bob@example.com,Bob Reyes,",
	}, "\n")

	recipients, err := ParseRecipients(strings.NewReader(manifest), "recruits.csv")
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	require.Equal(t, Recipient{Email: "ann@example.com", Name: "Ann Ọnụọha", Role: "manager"}, recipients[0])
	require.Equal(t, "employee", recipients[1].Role)
}

func TestParseRecipientsRepairsSwappedColumns(t *testing.T) {
	t.Parallel()

	manifest := "email,name\nJane Doe,jane@example.com\n"
	recipients, err := ParseRecipients(strings.NewReader(manifest), "swapped.csv")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, "jane@example.com", recipients[0].Email)
	require.Equal(t, "Jane Doe", recipients[0].Name)
}

func TestParseRecipientsDropsRowsWithoutEmail(t *testing.T) {
	t.Parallel()

	manifest := strings.Join([]string{
		"EMAIL,NAME",
		"good@example.com,Good Row",
		"not-an-address,Bad Row",
		",Blank Row",
	}, "\n")

	recipients, err := ParseRecipients(strings.NewReader(manifest), "mixed.csv")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, "good@example.com", recipients[0].Email)
}

func TestParseRecipientsAcceptsEmailOnlyManifest(t *testing.T) {
	t.Parallel()

	recipients, err := ParseRecipients(strings.NewReader("email\njane@example.com\n"), "emails.csv")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, Recipient{Email: "jane@example.com", Name: "", Role: "employee"}, recipients[0])
}

func TestParseRecipientsRequiresEmailColumn(t *testing.T) {
	t.Parallel()

	_, err := ParseRecipients(strings.NewReader("name\nJane\n"), "noheader.csv")
	require.Error(t, err)
	require.Contains(t, err.Error(), "email")
}

func TestTemplateWorkbookRoundTrips(t *testing.T) {
	t.Parallel()

	workbook, err := TemplateWorkbook()
	require.NoError(t, err)

	recipients, err := ParseRecipients(bytes.NewReader(workbook), "template.xlsx")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, "jane.doe@example.com", recipients[0].Email)
	require.Equal(t, "employee", recipients[0].Role)
}
