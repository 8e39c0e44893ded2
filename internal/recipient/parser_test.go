package recipient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipientsBasic(t *testing.T) {
	csvText := "Email,City,State,Postal_Code\n" +
		"jane@example.com,Austin,TX,78701\n" +
		"bob@example.com,Dallas,TX,75201\n"

	recs := ParseRecipients(csvText)
	require.Len(t, recs, 2)
	assert.Equal(t, "jane@example.com", recs[0].Email)
	assert.Equal(t, "Austin", recs[0].City)
	assert.Equal(t, "TX", recs[0].StateProvinceRegion)
	assert.Equal(t, "78701", recs[0].PostalCode)
	assert.Equal(t, "bob@example.com", recs[1].Email)
}

func TestParseRecipientsHeaderAliases(t *testing.T) {
	// mixed-case headers with spaces, plus an unrecognized column
	csvText := "AddressID,Address Line 1,EMAIL,Notes\n" +
		"a-1,1 Main St,jane@example.com,call after 5\n"

	recs := ParseRecipients(csvText)
	require.Len(t, recs, 1)
	assert.Equal(t, "a-1", recs[0].AddressID)
	assert.Equal(t, "1 Main St", recs[0].AddressLine1)
	assert.Equal(t, "jane@example.com", recs[0].Email)
}

func TestParseRecipientsQuotedFields(t *testing.T) {
	// quoted cell with an embedded comma, and a quoted-local-part email
	csvText := "email,address_line_1,city\n" +
		`"""a,b""@example.com","12 Elm St, Apt 4",Boston` + "\n"

	recs := ParseRecipients(csvText)
	require.Len(t, recs, 1)
	assert.Equal(t, `"a,b"@example.com`, recs[0].Email)
	assert.Equal(t, "12 Elm St, Apt 4", recs[0].AddressLine1)
	assert.Equal(t, "Boston", recs[0].City)
}

func TestParseRecipientsDropsRowsWithoutEmail(t *testing.T) {
	csvText := "email,city\n" +
		"jane@example.com,Austin\n" +
		",Dallas\n" +
		"   ,Houston\n" +
		"bob@example.com,Waco\n"

	recs := ParseRecipients(csvText)
	require.Len(t, recs, 2)
	assert.Equal(t, "jane@example.com", recs[0].Email)
	assert.Equal(t, "bob@example.com", recs[1].Email)
}

func TestParseRecipientsEmailOnlyGate(t *testing.T) {
	// every other field empty is still a valid row
	recs := ParseRecipients("email,city,market\njane@example.com,,\n")
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].City)
	assert.Empty(t, recs[0].Market)
}

func TestParseRecipientsStripsBOM(t *testing.T) {
	recs := ParseRecipients("\ufeffemail\njane@example.com\n")
	require.Len(t, recs, 1)
	assert.Equal(t, "jane@example.com", recs[0].Email)
}

func TestParseRecipientsBlankInput(t *testing.T) {
	assert.Empty(t, ParseRecipients(""))
	assert.Empty(t, ParseRecipients("   \n  \n"))
}

func TestParseRecipientsRaggedRows(t *testing.T) {
	// short and long rows are tolerated, extra cells ignored
	csvText := "email,city,state\n" +
		"jane@example.com\n" +
		"bob@example.com,Dallas,TX,overflow\n"

	recs := ParseRecipients(csvText)
	require.Len(t, recs, 2)
	assert.Empty(t, recs[0].City)
	assert.Equal(t, "Dallas", recs[1].City)
}

func TestParseRecipientsPreservesOrder(t *testing.T) {
	csvText := "email\nc@x.com\na@x.com\nb@x.com\n"
	recs := ParseRecipients(csvText)
	require.Len(t, recs, 3)
	assert.Equal(t, "c@x.com", recs[0].Email)
	assert.Equal(t, "a@x.com", recs[1].Email)
	assert.Equal(t, "b@x.com", recs[2].Email)
}
