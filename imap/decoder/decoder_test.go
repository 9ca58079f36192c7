package decoder

import (
	"testing"

	"github.com/ProtonMail/photon/imap/response"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, line string) response.Response {
	res, req, err := Decode([]byte(line))
	require.NoError(t, err)
	require.Nil(t, req)
	require.NotNil(t, res)

	return res
}

func decodeContinuationRequest(t *testing.T, line string) response.ContinuationRequest {
	res, req, err := Decode([]byte(line))
	require.NoError(t, err)
	require.Nil(t, res)
	require.NotNil(t, req)

	return req
}

func TestDecode_Tagged(t *testing.T) {
	require.Equal(t, &response.Tagged{
		Tag:    "A001",
		Status: response.StatusOK,
		Code:   "READ-WRITE",
		Text:   "SELECT completed",
	}, decodeResponse(t, "A001 OK [READ-WRITE] SELECT completed\r\n"))

	require.Equal(t, &response.Tagged{
		Tag:    "a2",
		Status: response.StatusNo,
		Text:   "no such mailbox",
	}, decodeResponse(t, "a2 no no such mailbox\r\n"))

	require.Equal(t, &response.Tagged{Tag: "A3", Status: response.StatusBad}, decodeResponse(t, "A3 BAD\r\n"))
}

func TestDecode_TaggedUnknownStatus(t *testing.T) {
	_, _, err := Decode([]byte("A1 MAYBE later\r\n"))
	require.Error(t, err)
}

func TestDecode_Untagged(t *testing.T) {
	require.Equal(t, &response.Untagged{
		Name: "CAPABILITY",
		Text: "IMAP4rev1 IDLE LITERAL+ AUTH=PLAIN",
	}, decodeResponse(t, "* CAPABILITY IMAP4rev1 IDLE LITERAL+ AUTH=PLAIN\r\n"))

	require.Equal(t, &response.Untagged{
		Name: "OK",
		Code: "UIDVALIDITY 3857529045",
		Text: "UIDs valid",
	}, decodeResponse(t, "* OK [UIDVALIDITY 3857529045] UIDs valid\r\n"))

	require.Equal(t, &response.Untagged{
		Name:      "EXISTS",
		Number:    172,
		HasNumber: true,
	}, decodeResponse(t, "* 172 EXISTS\r\n"))
}

func TestDecode_Fatal(t *testing.T) {
	require.Equal(t, &response.Fatal{Text: "Autologout; idle for too long"}, decodeResponse(t, "* BYE Autologout; idle for too long\r\n"))
}

func TestDecode_FetchKeepsAttributesVerbatim(t *testing.T) {
	res := decodeResponse(t, "* 12 FETCH (FLAGS (\\Seen) BODY[] {5}\r\nab\r\nc)\r\n")

	require.Equal(t, &response.Fetch{
		SeqNum: 12,
		Data:   []byte("(FLAGS (\\Seen) BODY[] {5}\r\nab\r\nc)"),
	}, res)
}

func TestDecode_Continuation(t *testing.T) {
	require.Equal(t, &response.ContinuationText{Text: "Ready for literal data"}, decodeContinuationRequest(t, "+ Ready for literal data\r\n"))
	require.Equal(t, &response.ContinuationText{Text: "idling"}, decodeContinuationRequest(t, "+ idling\r\n"))
	require.Equal(t, &response.ContinuationText{}, decodeContinuationRequest(t, "+ \r\n"))
	require.Equal(t, &response.ContinuationText{}, decodeContinuationRequest(t, "+\r\n"))
	require.Equal(t, &response.ContinuationText{Code: "ALERT", Text: "go on"}, decodeContinuationRequest(t, "+ [ALERT] go on\r\n"))
	require.Equal(t, &response.ContinuationData{Data: []byte("abc")}, decodeContinuationRequest(t, "+ YWJj\r\n"))
}

func TestDecode_MissingNewLine(t *testing.T) {
	_, _, err := Decode([]byte("A1 OK done"))
	require.Error(t, err)
}

func TestDecode_List(t *testing.T) {
	require.Equal(t, &response.List{
		Name:       "LIST",
		Attributes: []string{`\HasNoChildren`, `\Sent`},
		Delimiter:  "/",
		Mailbox:    "Sent Items",
	}, decodeResponse(t, "* LIST (\\HasNoChildren \\Sent) \"/\" \"Sent Items\"\r\n"))

	require.Equal(t, &response.List{
		Name:    "LSUB",
		Mailbox: "INBOX",
	}, decodeResponse(t, "* lsub () NIL INBOX\r\n"))
}

func TestDecode_ListLiteralMailbox(t *testing.T) {
	require.Equal(t, &response.List{
		Name:       "LIST",
		Attributes: []string{`\Noselect`},
		Delimiter:  ".",
		Mailbox:    "a\"b",
	}, decodeResponse(t, "* LIST (\\Noselect) \".\" {3}\r\na\"b\r\n"))
}

func TestDecode_ListModifiedUTF7(t *testing.T) {
	res := decodeResponse(t, "* LIST () \"/\" \"Entw&APw-rfe\"\r\n")

	require.Equal(t, "Entwürfe", res.(*response.List).Mailbox)
}

func TestDecode_ListMalformed(t *testing.T) {
	for _, line := range []string{
		"* LIST \"/\" INBOX\r\n",
		"* LIST () NOPE INBOX\r\n",
		"* LIST () \"/\"\r\n",
	} {
		_, _, err := Decode([]byte(line))
		require.Error(t, err, line)
	}
}
